// Command ratecheck queries the BCU services from the command line using the
// same lookup stack as the HTTP server. It prints the resolved currency and
// the requested rate as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Alxzu/bcu-usd-billete/internal/config"
	"github.com/Alxzu/bcu-usd-billete/internal/logger"
	"github.com/Alxzu/bcu-usd-billete/internal/models"
	"github.com/Alxzu/bcu-usd-billete/internal/service"
)

func main() {
	var (
		dateFlag    = flag.String("date", "", "Quotation date (YYYY-MM-DD); empty means latest")
		timeoutFlag = flag.Duration("timeout", 60*time.Second, "Overall lookup timeout")
		verboseFlag = flag.Bool("v", false, "Log upstream calls")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("load configuration: %v", err)
	}

	log := logger.Discard()
	if *verboseFlag {
		log = logger.New("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeoutFlag)
	defer cancel()

	ratesService, err := service.NewRatesService(ctx, cfg, log)
	if err != nil {
		fail("connect to BCU services: %v", err)
	}

	currency, err := ratesService.GetCurrencyCode(ctx)
	if err != nil {
		fail("resolve currency: %v", err)
	}

	var record *models.RateRecord
	if *dateFlag == "" {
		record, err = ratesService.GetLatestRate(ctx, currency.Code)
	} else {
		var date models.Date
		if date, err = models.ParseDate(*dateFlag); err != nil {
			fail("invalid -date: %v", err)
		}
		record, err = ratesService.GetRateForDate(ctx, currency.Code, date)
	}
	if err != nil {
		fail("fetch rate: %v", err)
	}
	if record == nil {
		fail("no quotation available for the requested date")
	}

	output := struct {
		Currency models.CurrencyInfo `json:"currency"`
		Rate     *models.RateRecord  `json:"rate"`
	}{Currency: currency, Rate: record}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(output); err != nil {
		fail("encode output: %v", err)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ratecheck: "+format+"\n", args...)
	os.Exit(1)
}
