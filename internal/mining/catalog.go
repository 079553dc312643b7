package mining

// Coin is a static catalog entry. BaseEarning is the reference hourly rate
// at BaseHashRate.
type Coin struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	BaseHashRate float64 `json:"base_hash_rate"`
	BaseEarning  float64 `json:"base_earning"`
}

// Package is a paid tier. Duration is in days.
type Package struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Duration int     `json:"duration"`
}

// Multipliers describes how a package scales the base rates.
type Multipliers struct {
	HashRate   float64 `json:"hash_rate_multiplier"`
	Earning    float64 `json:"earning_multiplier"`
	DailyBonus float64 `json:"daily_earning_bonus"`
}

var Coins = []Coin{
	{ID: "btc", Name: "Bitcoin", Symbol: "BTC", BaseHashRate: 1000, BaseEarning: 0.001},
	{ID: "eth", Name: "Ethereum", Symbol: "ETH", BaseHashRate: 2500, BaseEarning: 0.003},
	{ID: "doge", Name: "Dogecoin", Symbol: "DOGE", BaseHashRate: 5000, BaseEarning: 0.8},
	{ID: "ltc", Name: "Litecoin", Symbol: "LTC", BaseHashRate: 3000, BaseEarning: 0.015},
}

var Packages = []Package{
	{ID: "starter", Name: "Starter", Price: 299, Duration: 30},
	{ID: "professional", Name: "Professional", Price: 799, Duration: 90},
	{ID: "enterprise", Name: "Enterprise", Price: 1999, Duration: 180},
}

var packageMultipliers = map[string]Multipliers{
	"starter":      {HashRate: 2.0, Earning: 1.5, DailyBonus: 3.5},
	"professional": {HashRate: 3.5, Earning: 2.5, DailyBonus: 12.0},
	"enterprise":   {HashRate: 5.0, Earning: 4.0, DailyBonus: 25.0},
}

var trialMultipliers = Multipliers{HashRate: 1.0, Earning: 1.0, DailyBonus: 0}

// CoinByID looks a coin up in the static catalog.
func CoinByID(id string) (Coin, bool) {
	for _, c := range Coins {
		if c.ID == id {
			return c, true
		}
	}
	return Coin{}, false
}

// PackageByID looks a package up in the static catalog.
func PackageByID(id string) (Package, bool) {
	for _, p := range Packages {
		if p.ID == id {
			return p, true
		}
	}
	return Package{}, false
}

// PackageMultipliers returns the multiplier profile for a package tier.
// An empty or unknown id falls back to the trial profile.
func PackageMultipliers(packageID string) Multipliers {
	if m, ok := packageMultipliers[packageID]; ok {
		return m
	}
	return trialMultipliers
}
