// Command chart renders a delivered candle document to PNG and prints the
// bond table for a delivered bond document.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"time"

	"MoexLens/internal/bonds"
	"MoexLens/internal/calculator"
	"MoexLens/internal/chart"
	"MoexLens/internal/export"
	"MoexLens/internal/feed"
	"MoexLens/internal/logger"
	"MoexLens/internal/model"
)

func main() {
	candlesPath := flag.String("candles", "data/candles/{ticker}.json", "candle document, {ticker} is substituted")
	bondsPath := flag.String("bonds", "", "bond document; empty skips the table")
	ticker := flag.String("ticker", "SiH6", "ticker substituted into -candles")
	out := flag.String("out", "chart.png", "output PNG path")
	xlsx := flag.String("xlsx", "", "also write the candles and chart to this workbook")
	width := flag.Float64("width", 960, "chart width in CSS pixels")
	height := flag.Float64("height", 540, "chart height in CSS pixels")
	dpr := flag.Float64("dpr", 2, "device pixel ratio")
	limit := flag.Int("limit", 3, "bonds listed in the table")
	yearsTo := flag.Int("years-to", 0, "only bonds maturing within this many years; 0 disables")
	currency := flag.String("currency", "", "only bonds in this currency")
	level := flag.String("log-level", "warn", "log level")
	flag.Parse()

	log := logger.New(*level, "")

	src := feed.NewFileSource(*candlesPath, *bondsPath)
	snap, err := feed.NewFeed(src, *ticker, log).Load(*ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chart: %v\n", err)
		os.Exit(1)
	}

	ctl := chart.NewController(nil)
	ctl.Resize(model.HostBox{Width: *width, Height: *height}, *dpr)
	surface := ctl.SubmitCandles(snap.Candles)
	if err := chart.SavePNG(*out, surface); err != nil {
		fmt.Fprintf(os.Stderr, "chart: %v\n", err)
		os.Exit(1)
	}
	w := ctl.Window()
	vp := ctl.Viewport()
	fmt.Printf("%s: %d rows, %d drawn, %d dropped, %.0fx%.0f@%gx -> %s\n",
		snap.Ticker, len(snap.Rows), len(w.Candles), snap.Dropped,
		vp.CSSWidth, vp.CSSHeight, vp.DevicePixelRatio, *out)

	if *xlsx != "" {
		var png bytes.Buffer
		if err := chart.EncodePNG(&png, surface); err != nil {
			fmt.Fprintf(os.Stderr, "chart: %v\n", err)
			os.Exit(1)
		}
		book, err := export.Workbook(snap.Rows, png.Bytes(), 1/vp.DevicePixelRatio)
		if err == nil {
			err = os.WriteFile(*xlsx, book, 0o644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "chart: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("workbook -> %s\n", *xlsx)
	}

	if *bondsPath == "" {
		return
	}
	filters := bonds.Filters{Currency: *currency}
	if *yearsTo > 0 {
		filters.MaturityTo = &bonds.MaturityDelta{Years: *yearsTo}
	}
	if err := filters.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "chart: %v\n", err)
		os.Exit(2)
	}
	yields := calculator.NewYieldCalculator(time.Now)
	found := bonds.Filter(snap.Bonds, filters, yields.Now())
	fmt.Println()
	fmt.Println(bonds.FormatTable(bonds.TopByCouponYield(found, *limit), yields))
}
