package project

import (
	"image/color"

	"github.com/Zachkp/portfolio/internal/chart"
)

var (
	blue   = chart.RGBA(37, 99, 235, 0.7)
	green  = chart.RGBA(16, 185, 129, 0.7)
	amber  = chart.RGBA(245, 158, 11, 0.7)
	red    = chart.RGBA(239, 68, 68, 0.7)
	purple = chart.RGBA(102, 126, 234, 0.6)
	gray   = chart.RGBA(107, 114, 128, 0.5)

	pink   = color.RGBA{R: 0xFF, G: 0x63, B: 0x84, A: 0xFF}
	sky    = color.RGBA{R: 0x36, G: 0xA2, B: 0xEB, A: 0xFF}
	yellow = color.RGBA{R: 0xFF, G: 0xCE, B: 0x56, A: 0xFF}
	teal   = color.RGBA{R: 0x4B, G: 0xC0, B: 0xC0, A: 0xFF}
	violet = color.RGBA{R: 0x99, G: 0x66, B: 0xFF, A: 0xFF}
)

// SkillChartKey is the home page skill radar.
const SkillChartKey chart.Key = "skillChart"

// SkillChart is drawn once on the home page, outside any modal.
func SkillChart() chart.Radar {
	return chart.Radar{
		Axes: []string{"Python", "SQL", "Machine learning", "Visualization", "Web", "Statistics"},
		Series: []chart.Series{
			{Label: "Proficiency", Values: []float64{90, 85, 80, 85, 70, 85}, Color: purple},
		},
		Max: 100,
	}
}

// chartConfigs maps every chart slot a project may reference to its configuration.
var chartConfigs = map[chart.Key]chart.Config{
	"kboChart":                     kboOverview(),
	"kboCorrelationChart":          kboCorrelation(),
	"kboEfficiencyChart":           kboEfficiency(),
	"kboImportanceChart":           kboImportance(),
	"regionalChart":                regionalOverview(),
	"vacantHousesChart":            vacantHouses(),
	"youthPopulationChart":         youthPopulation(),
	"regionalRiskChart":            regionalRisk(),
	"customerChart":                customerOverview(),
	"rfmChart":                     rfm(),
	"modelPerformanceChart":        modelPerformance(),
	"customerCharacteristicsChart": customerCharacteristics(),
}

// ChartConfig returns the configuration registered for key.
func ChartConfig(key chart.Key) (chart.Config, bool) {
	cfg, ok := chartConfigs[key]
	return cfg, ok
}

func kboOverview() chart.Bar {
	return chart.Bar{
		Title:  "FA grading reform: +5% investment efficiency",
		Labels: []string{"Current grading", "Performance model"},
		Series: []chart.Series{{Label: "FA investment efficiency (%)", Values: []float64{100, 105}, Color: sky}},
		Y:      chart.Axis{Label: "Investment efficiency (%)"},
	}
}

func kboCorrelation() chart.Scatter {
	return chart.Scatter{
		Title: "WAR vs salary (2024 FA players)",
		Series: []chart.PointSeries{{
			Label: "FA players (2024)",
			Points: []chart.Point{
				{X: 1.2, Y: 150}, {X: 1.8, Y: 200}, {X: 2.3, Y: 280}, {X: 2.7, Y: 350},
				{X: 3.1, Y: 420}, {X: 3.5, Y: 500}, {X: 3.9, Y: 580}, {X: 4.2, Y: 650},
				{X: 4.6, Y: 720}, {X: 5.0, Y: 800}, {X: 5.4, Y: 880}, {X: 5.8, Y: 950},
				{X: 6.2, Y: 1020}, {X: 6.8, Y: 1100}, {X: 7.2, Y: 1180}, {X: 7.8, Y: 1250},
			},
			Color:  blue,
			Radius: 6,
		}},
		X: chart.Axis{Label: "WAR (wins above replacement)", Min: 0, Max: 8},
		Y: chart.Axis{Label: "Salary (million KRW)", Min: 0, Max: 1300},
	}
}

func kboEfficiency() chart.Bar {
	return chart.Bar{
		Title:  "Investment efficiency by FA grade",
		Labels: []string{"A (1B+)", "B (500M-1B)", "C (300-500M)", "D (100-300M)"},
		Series: []chart.Series{{Label: "Investment efficiency (%)", Values: []float64{78, 65, 72, 85}, Color: green}},
		Y:      chart.Axis{Label: "Investment efficiency (%)", Min: 0, Max: 100},
	}
}

func kboImportance() chart.Radar {
	return chart.Radar{
		Title:  "Salary model feature importance",
		Axes:   []string{"WAR", "OPS", "ERA", "WHIP", "K/9", "BB/9", "Awards", "Age"},
		Series: []chart.Series{{Label: "Importance", Values: []float64{92, 88, 85, 78, 72, 68, 82, 65}, Color: amber}},
		Max:    100,
	}
}

func regionalOverview() chart.Doughnut {
	return chart.Doughnut{
		Title: "Four drivers of regional decline",
		Slices: []chart.Slice{
			{Label: "Capital concentration", Value: 30, Color: pink},
			{Label: "Medical infrastructure gap", Value: 25, Color: sky},
			{Label: "Youth outflow", Value: 25, Color: yellow},
			{Label: "Ageing", Value: 20, Color: teal},
		},
		Cutout: 0.5,
	}
}

func vacantHouses() chart.Line {
	return chart.Line{
		Title:  "Vacant housing rate, 2015-2024",
		Labels: []string{"2015", "2016", "2017", "2018", "2019", "2020", "2021", "2022", "2023", "2024"},
		Series: []chart.Series{{
			Label:  "National vacancy rate (%)",
			Values: []float64{8.2, 8.7, 9.1, 9.8, 10.3, 11.2, 11.8, 12.5, 13.2, 14.1},
			Color:  red,
		}},
		Y:    chart.Axis{Label: "Vacancy rate (%)", Min: 0, Max: 20},
		Fill: true,
	}
}

func youthPopulation() chart.Bar {
	return chart.Bar{
		Title:  "Youth population change by region, 2019-2024",
		Labels: []string{"Capital area", "Metro cities", "Small cities", "Rural", "Islands"},
		Series: []chart.Series{{Label: "Change (%)", Values: []float64{2.1, -1.8, -3.2, -5.7, -7.3}, Color: blue}},
		Y:      chart.Axis{Label: "Population change (%)", Min: -10, Max: 5},
	}
}

func regionalRisk() chart.Doughnut {
	return chart.Doughnut{
		Title: "Five drivers of regional decline",
		Slices: []chart.Slice{
			{Label: "Capital concentration", Value: 30, Color: pink},
			{Label: "Medical infrastructure gap", Value: 25, Color: sky},
			{Label: "Youth outflow", Value: 20, Color: yellow},
			{Label: "Ageing", Value: 15, Color: teal},
			{Label: "Transport access", Value: 10, Color: violet},
		},
		Cutout: 0.5,
	}
}

func customerOverview() chart.Pie {
	return chart.Pie{
		Title: "Customers by grade (heavily imbalanced)",
		Slices: []chart.Slice{
			{Label: "VIP (A)", Value: 1, Color: pink},
			{Label: "Premium (B)", Value: 4, Color: sky},
			{Label: "Standard (C-E)", Value: 95, Color: yellow},
		},
	}
}

func rfm() chart.Scatter {
	return chart.Scatter{
		Title: "RFM: recency vs frequency",
		Series: []chart.PointSeries{
			{Label: "VIP", Points: []chart.Point{{X: 90, Y: 95}, {X: 85, Y: 90}, {X: 88, Y: 92}}, Color: red, Radius: 6},
			{Label: "Premium", Points: []chart.Point{{X: 70, Y: 75}, {X: 65, Y: 70}, {X: 72, Y: 78}}, Color: amber, Radius: 6},
			{Label: "Standard", Points: []chart.Point{{X: 30, Y: 40}, {X: 25, Y: 35}, {X: 35, Y: 45}}, Color: gray, Radius: 6},
		},
		X: chart.Axis{Label: "Recency", Min: 0, Max: 100},
		Y: chart.Axis{Label: "Frequency", Min: 0, Max: 100},
	}
}

func modelPerformance() chart.Bar {
	return chart.Bar{
		Title:  "Model accuracy",
		Labels: []string{"Random Forest", "XGBoost", "LightGBM", "Logistic regression"},
		Series: []chart.Series{{Label: "Accuracy (%)", Values: []float64{89, 92, 91, 78}, Color: purple}},
		Y:      chart.Axis{Label: "Accuracy (%)", Min: 0, Max: 100},
	}
}

func customerCharacteristics() chart.Radar {
	return chart.Radar{
		Title: "Customer grade profiles",
		Axes:  []string{"Annual spend", "Frequency", "Credit limit", "Repayment", "Age band", "Income"},
		Series: []chart.Series{
			{Label: "VIP", Values: []float64{95, 90, 85, 95, 80, 90}, Color: red},
			{Label: "Standard", Values: []float64{45, 50, 60, 70, 75, 65}, Color: gray},
		},
		Max: 100,
	}
}
