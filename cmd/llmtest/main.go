package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/wolfman30/realestate-concierge/cmd/mainconfig"
	"github.com/wolfman30/realestate-concierge/internal/app/bootstrap"
	appconfig "github.com/wolfman30/realestate-concierge/internal/config"
	"github.com/wolfman30/realestate-concierge/internal/conversation"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

// samples exercise each extraction kind in both supported languages.
var samples = []struct {
	kind string
	text string
}{
	{conversation.ExtractInterest, "I am looking to rent a flat near my office"},
	{conversation.ExtractInterest, "मला दुकानासाठी जागा हवी आहे"},
	{conversation.ExtractLocation, "something close to Baner or maybe Aundh"},
	{conversation.ExtractLocation, "कोथरूड मध्ये घर पाहिजे"},
	{conversation.ExtractBudget, "around eighty five lakhs max"},
	{conversation.ExtractBudget, "माझे बजेट ५० लाख आहे"},
}

func main() {
	kind := flag.String("kind", "", "extraction kind (interest, location, budget); empty runs the samples")
	text := flag.String("text", "", "free text to extract from")
	flag.Parse()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load aws config: %v\n", err)
		os.Exit(1)
	}
	extractor, closeLLM, err := bootstrap.BuildExtractor(ctx, cfg, awsCfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build extractor: %v\n", err)
		os.Exit(1)
	}
	defer closeLLM()
	if extractor == nil {
		fmt.Fprintln(os.Stderr, "no LLM configured: set BEDROCK_MODEL_ID and/or GEMINI_API_KEY")
		os.Exit(1)
	}

	if *kind != "" {
		run(ctx, extractor, *kind, *text)
		return
	}
	for _, s := range samples {
		run(ctx, extractor, s.kind, s.text)
	}
}

func run(ctx context.Context, extractor conversation.Extractor, kind, text string) {
	start := time.Now()
	value, err := extractor.Extract(ctx, kind, text)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		fmt.Printf("%-8s %-45q error: %v (%s)\n", kind, text, err, elapsed)
		return
	}
	fmt.Printf("%-8s %-45q => %s (%s)\n", kind, text, value, elapsed)
}
