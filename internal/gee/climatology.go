package gee

import (
	"time"

	"cropcast/internal/agro"
)

// monthlyNormal is a long-term monthly mean for one zone.
type monthlyNormal struct {
	ndvi   float64
	rainMM float64
}

// climatologyTable holds zone-level monthly normals (index 0 = January).
// Values are coarse IMD/MODIS-derived long-term means; they only need to be
// plausible enough to keep predictions sane when live data is unavailable.
var climatologyTable = map[string][12]monthlyNormal{
	agro.ZoneNorthIndia: {
		{0.42, 22}, {0.46, 25}, {0.44, 20}, {0.35, 12}, {0.30, 18}, {0.38, 65},
		{0.52, 190}, {0.58, 210}, {0.55, 120}, {0.48, 25}, {0.50, 8}, {0.46, 12},
	},
	agro.ZoneEastIndia: {
		{0.48, 15}, {0.50, 25}, {0.46, 30}, {0.40, 45}, {0.42, 90}, {0.50, 230},
		{0.58, 320}, {0.62, 300}, {0.60, 240}, {0.54, 110}, {0.50, 20}, {0.48, 8},
	},
	agro.ZoneWestIndia: {
		{0.38, 8}, {0.36, 5}, {0.32, 6}, {0.28, 4}, {0.26, 12}, {0.36, 120},
		{0.50, 280}, {0.55, 250}, {0.52, 160}, {0.44, 40}, {0.40, 15}, {0.38, 6},
	},
	agro.ZoneSouthIndia: {
		{0.50, 20}, {0.48, 15}, {0.45, 25}, {0.44, 55}, {0.46, 95}, {0.52, 110},
		{0.56, 140}, {0.58, 145}, {0.56, 160}, {0.54, 200}, {0.52, 150}, {0.50, 60},
	},
}

// fallbackNormals covers states with no zone mapping.
var fallbackNormals = [12]monthlyNormal{
	{0.44, 16}, {0.45, 18}, {0.42, 20}, {0.37, 29}, {0.36, 54}, {0.44, 131},
	{0.54, 233}, {0.58, 226}, {0.56, 170}, {0.50, 94}, {0.48, 48}, {0.46, 22},
}

// Climatology derives seasonal inputs from the monthly normals: mean NDVI
// and summed rainfall over the observation window from the sowing month.
func Climatology(state string, sowing time.Time) SeasonData {
	normals, ok := climatologyTable[agro.ZoneForState(state)]
	if !ok {
		normals = fallbackNormals
	}

	months := seasonWindowDays / 30
	start := int(sowing.Month()) - 1

	ndviSum := 0.0
	rainSum := 0.0
	for i := 0; i < months; i++ {
		n := normals[(start+i)%12]
		ndviSum += n.ndvi
		rainSum += n.rainMM
	}

	return SeasonData{
		NDVI:       ndviSum / float64(months),
		RainfallMM: rainSum,
		Source:     SourceClimatology,
		FetchedAt:  time.Now(),
	}
}
