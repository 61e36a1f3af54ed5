package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"ideaspark/scoring"
)

// ideaRecord is one input line. Funding is accepted as any JSON value;
// non-numeric content is coerced to zero rather than rejected. The idea's
// own location takes precedence over the author's profile location unless
// it is the unknown fallback.
type ideaRecord struct {
	Category        string      `json:"category"`
	RequiredFunding interface{} `json:"required_funding"`
	TargetAudience  string      `json:"target_audience"`
	Location        string      `json:"location"`
	AuthorLocation  string      `json:"author_location"`
}

func main() {
	modelPath := flag.String("model_path", "./models/success_rate.json", "model path")
	input := flag.String("input", "-", "json-lines input file, - for stdin")
	explain := flag.Bool("explain", false, "print the per-feature rationale")
	flag.Parse()

	service := scoring.NewService(scoring.ServiceConfig{ModelPath: *modelPath}, nil, nil)
	if err := service.Initialize(); err != nil {
		log.Fatalf("failed to initialize scoring engine: %v", err)
	}

	reader := os.Stdin
	if *input != "-" {
		file, err := os.Open(*input)
		if err != nil {
			log.Fatalf("failed to open input: %v", err)
		}
		defer file.Close()
		reader = file
	}

	if err := scoreAll(service, reader, os.Stdout, *explain); err != nil {
		log.Fatalf("scoring failed: %v", err)
	}
}

func scoreAll(service *scoring.Service, r io.Reader, w io.Writer, explain bool) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var record ideaRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		signal := toSignal(record)

		if explain {
			explanation, err := service.Explain(signal)
			if err != nil {
				return err
			}
			for _, sentence := range scoring.Sentences(signal, explanation) {
				fmt.Fprintln(w, sentence)
			}
			fmt.Fprintln(w)
			continue
		}

		prob, err := service.Predict(signal)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%.4f\n", prob)
	}
	return scanner.Err()
}

func toSignal(record ideaRecord) scoring.IdeaSignal {
	return scoring.IdeaSignal{
		Category:        record.Category,
		RequiredFunding: coerceFunding(record.RequiredFunding),
		TargetAudience:  record.TargetAudience,
		AuthorLocation:  string(scoring.ResolveLocation(record.Location, record.AuthorLocation)),
	}
}

func coerceFunding(v interface{}) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case string:
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return 0
}
