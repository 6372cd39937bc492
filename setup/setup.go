// Package setup builds the pricing engine from the application config.
package setup

import (
	"fmt"
	"net/http"
	"time"

	"github.com/icodeforyou/spotprice-go/cache"
	"github.com/icodeforyou/spotprice-go/calc"
	"github.com/icodeforyou/spotprice-go/config"
	"github.com/icodeforyou/spotprice-go/elprisetjustnu"
	"github.com/icodeforyou/spotprice-go/hvakosterstrommen"
	"github.com/icodeforyou/spotprice-go/nordpool"
	"github.com/icodeforyou/spotprice-go/pricing"
	"github.com/icodeforyou/spotprice-go/types"
)

// PriceSource chains the configured providers in priority order.
func PriceSource(cnfg config.AppConfigPriceSource) (*pricing.FallbackSource, error) {
	client := &http.Client{Timeout: cnfg.GetTimeout()}

	var sources []types.PriceSource
	for _, name := range cnfg.GetProviders() {
		switch name {
		case hvakosterstrommen.Name:
			sources = append(sources, hvakosterstrommen.New(cnfg.Area, client))
		case elprisetjustnu.Name:
			sources = append(sources, elprisetjustnu.New(cnfg.Area, client))
		case nordpool.Name:
			sources = append(sources, nordpool.New(cnfg.Area, cnfg.GetCurrency(), client))
		default:
			return nil, fmt.Errorf("unknown price provider %q", name)
		}
	}
	return pricing.NewFallbackSource(sources...), nil
}

func Settings(cnfg *config.AppConfig) pricing.Settings {
	return pricing.Settings{
		Fees: calc.FeeSchedule{
			FullFee:       cnfg.Fees.GetFull(),
			DiscountedFee: cnfg.Fees.GetDiscounted(),
		},
		HighCostHours:  cnfg.Classifier.GetHighCostHours(),
		PreferredHours: cnfg.Classifier.GetPreferredHours(),
	}
}

// Engine wires the providers, a fresh day cache and the settings into an engine.
func Engine(cnfg *config.AppConfig, loc *time.Location) (*pricing.Engine, error) {
	source, err := PriceSource(cnfg.PriceSource)
	if err != nil {
		return nil, err
	}
	dayCache := cache.NewDayCache(cnfg.Cache.GetRetention())
	return pricing.NewEngine(source, dayCache, loc, Settings(cnfg)), nil
}
