package testkit

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Deterministic sample dataset generators for tests and the CLI sample
// command. The same seed always yields byte-identical output.

var regions = []string{"Seoul", "Busan", "Incheon", "Daegu", "Gwangju"}
var categories = []string{"Electronics", "Apparel", "Food", "Home", "Beauty"}
var channels = []string{"search", "social", "email", "display"}

// SalesCSV generates a daily sales dataset with an upward trend, weekly
// seasonality, and a handful of injected extreme rows so that trend and
// outlier extraction have something to find.
func SalesCSV(rows int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	buf.WriteString("date,region,product_category,sales_amount,units_sold,promotion_active\n")
	for i := 0; i < rows; i++ {
		day := start.AddDate(0, 0, i)
		// Linear growth plus a weekly cycle plus noise
		base := 1000.0 + 12.0*float64(i)
		seasonal := 150.0 * math.Sin(2*math.Pi*float64(i)/7)
		noise := rng.NormFloat64() * 80
		sales := base + seasonal + noise

		promo := "no"
		if rng.Float64() < 0.2 {
			promo = "yes"
			sales *= 1.3
		}
		// Occasional extreme day
		if i > 0 && i%37 == 0 {
			sales *= 4
		}

		units := int(sales/25) + rng.Intn(10)
		fmt.Fprintf(&buf, "%s,%s,%s,%.2f,%d,%s\n",
			day.Format("2006-01-02"),
			regions[rng.Intn(len(regions))],
			categories[rng.Intn(len(categories))],
			sales, units, promo)
	}
	return buf.Bytes()
}

// MarketingCSV generates a campaign performance dataset where clicks
// track impressions and conversions track clicks, giving the
// correlation extractor strongly related numeric pairs.
func MarketingCSV(rows int, seed int64) []byte {
	rng := rand.New(rand.NewSource(seed))

	var buf bytes.Buffer
	buf.WriteString("campaign_id,channel,cost,impressions,clicks,conversions\n")
	for i := 0; i < rows; i++ {
		cost := 100 + rng.Float64()*900
		impressions := int(cost*120 + rng.NormFloat64()*500)
		if impressions < 0 {
			impressions = 0
		}
		clicks := int(float64(impressions)*0.03 + rng.NormFloat64()*8)
		if clicks < 0 {
			clicks = 0
		}
		conversions := int(float64(clicks)*0.1 + rng.NormFloat64()*2)
		if conversions < 0 {
			conversions = 0
		}
		fmt.Fprintf(&buf, "CMP-%03d,%s,%.2f,%d,%d,%d\n",
			i+1, channels[rng.Intn(len(channels))], cost, impressions, clicks, conversions)
	}
	return buf.Bytes()
}

// ConstantColumnCSV generates a table with one constant numeric column,
// for exercising the zero-variance outlier edge case.
func ConstantColumnCSV(rows int) []byte {
	var buf bytes.Buffer
	buf.WriteString("id,constant\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&buf, "%d,42\n", i+1)
	}
	return buf.Bytes()
}
