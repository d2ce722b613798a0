package main

import (
	"bufio"
	"strings"
	"testing"
	"time"
)

func TestParseProviders(t *testing.T) {
	input := `[
		{"id": 1, "image": "https://img/1.png", "name": "Ana", "category": "Cleaning", "city": "Pune", "price": 499},
		{"id": 2, "image": "https://img/2.png", "name": "Raj", "category": "Plumbing", "city": "Delhi", "price": 799.5}
	]`
	inputs, err := parseProviders(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(inputs))
	}
	if inputs[1].ID != 2 || inputs[1].Category != "Plumbing" || inputs[1].Price != 799.5 {
		t.Fatalf("unexpected second provider %+v", inputs[1])
	}
}

func TestParseProvidersRejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"unknown category": `[{"id": 1, "name": "A", "category": "Gardening", "city": "X", "price": 1}]`,
		"duplicated id":    `[{"id": 1, "name": "A", "category": "Cleaning", "city": "X", "price": 1},{"id": 1, "name": "B", "category": "Cleaning", "city": "X", "price": 1}]`,
		"zero id":          `[{"id": 0, "name": "A", "category": "Cleaning", "city": "X", "price": 1}]`,
		"unknown field":    `[{"id": 1, "rating": 5, "name": "A", "category": "Cleaning", "city": "X", "price": 1}]`,
		"not an array":     `{"id": 1}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := parseProviders(strings.NewReader(input)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestPromptProviders(t *testing.T) {
	script := strings.Join([]string{
		"7", "Lucía", "https://img/7.png", "Madrid", "Gardening", "Painting", "350",
		"8", "Leo", "", "Madrid", "Cleaning", "gratis",
		"",
	}, "\n") + "\n"

	inputs := promptProviders(bufio.NewReader(strings.NewReader(script)))
	if len(inputs) != 1 {
		t.Fatalf("expected 1 provider after discarding bad price, got %d", len(inputs))
	}
	got := inputs[0]
	if got.ID != 7 || got.Category != "Painting" || got.Price != 350 || got.City != "Madrid" {
		t.Fatalf("unexpected provider %+v", got)
	}
}

func TestPromptProvidersStopsAtEOF(t *testing.T) {
	cases := map[string]string{
		"eof after invalid category": "9\nNora\nhttps://img/9.png\nLima\nGardening\n",
		"eof before price":           "9\nNora\nhttps://img/9.png\nLima\nCleaning\n",
		"eof mid record":             "9\nNora",
		"empty input":                "",
	}
	for name, script := range cases {
		t.Run(name, func(t *testing.T) {
			done := make(chan []int, 1)
			go func() {
				inputs := promptProviders(bufio.NewReader(strings.NewReader(script)))
				ids := make([]int, 0, len(inputs))
				for _, in := range inputs {
					ids = append(ids, int(in.ID))
				}
				done <- ids
			}()
			select {
			case ids := <-done:
				if len(ids) != 0 {
					t.Fatalf("expected no complete provider, got %v", ids)
				}
			case <-time.After(2 * time.Second):
				t.Fatalf("prompt did not stop at end of input")
			}
		})
	}
}

func TestPromptProvidersKeepsCompletedBeforeEOF(t *testing.T) {
	script := "3\nAna\nhttps://img/3.png\nPune\nCleaning\n499\n4\nRaj"
	inputs := promptProviders(bufio.NewReader(strings.NewReader(script)))
	if len(inputs) != 1 || inputs[0].ID != 3 || inputs[0].Price != 499 {
		t.Fatalf("expected only the completed provider, got %+v", inputs)
	}
}
