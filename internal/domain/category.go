package domain

// Category is the kind of question an intent asks.
type Category string

const (
	CategoryTokenLaunch    Category = "token-launch"
	CategoryEcosystemToken Category = "ecosystem-token"
	CategoryCombined       Category = "combined"
	CategoryDefiTVL        Category = "defi-tvl"
	CategoryDefiYield      Category = "defi-yield"
	CategoryPrice          Category = "price"
	CategoryNews           Category = "news"
	CategoryTrending       Category = "trending"
	CategorySentiment      Category = "sentiment"
	CategoryGeneralMarket  Category = "general-market"
)

// AllCategories lists every category in declaration order.
var AllCategories = []Category{
	CategoryTokenLaunch,
	CategoryEcosystemToken,
	CategoryCombined,
	CategoryDefiTVL,
	CategoryDefiYield,
	CategoryPrice,
	CategoryNews,
	CategoryTrending,
	CategorySentiment,
	CategoryGeneralMarket,
}

// String returns the string representation of Category.
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is a known value.
func (c Category) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// RecordKind returns the record variant produced for this category.
// Combined queries produce token records from both launch platforms.
func (c Category) RecordKind() Kind {
	switch c {
	case CategoryTokenLaunch, CategoryEcosystemToken, CategoryCombined:
		return KindToken
	case CategoryDefiTVL:
		return KindProtocol
	case CategoryDefiYield:
		return KindYieldPool
	case CategoryPrice, CategoryGeneralMarket:
		return KindPrice
	case CategoryNews:
		return KindNews
	case CategoryTrending:
		return KindTrending
	case CategorySentiment:
		return KindSentiment
	default:
		return KindToken
	}
}

// Platform identifies a token launch platform.
type Platform string

const (
	PlatformPumpFun  Platform = "pumpfun"
	PlatformLetsBonk Platform = "letsbonk"
)

// DisplayName returns the human-facing platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformPumpFun:
		return "pump.fun"
	case PlatformLetsBonk:
		return "letsbonk.fun"
	default:
		return string(p)
	}
}
