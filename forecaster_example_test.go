package forecaster

import (
	"fmt"

	"github.com/aouyang1/indicator-forecaster/timedataset"
)

func ExampleForecaster_ForecastOne() {
	opt := NewDefaultOptions()
	opt.LastActualYear = 2022
	opt.Horizon = 2024

	obs := timedataset.Observations{
		2018: 1.0,
		2019: 2.0,
		2020: 3.0,
		2021: 4.0,
		2022: 5.0,
	}

	for _, p := range New(opt).ForecastOne(obs) {
		fmt.Printf("%d %.1f\n", p.Year, p.Value)
	}
	// Output:
	// 2023 6.0
	// 2024 7.0
}
