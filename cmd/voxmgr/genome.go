package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
)

// demoGenome is the two-material genome of the reference demo run.
var demoGenome = models.Genome{0.01, 1, 1, 1, 1, 0.01, 1, 1, 1, 1}

// parseGenome accepts comma or whitespace separated numbers.
func parseGenome(s string) (models.Genome, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty genome")
	}
	g := make(models.Genome, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid gene %q: %w", f, err)
		}
		g = append(g, v)
	}
	return g, nil
}

// readGenomes loads a file holding either a JSON array of genomes, a single
// JSON genome, or one plain-text genome per line.
func readGenomes(path string) ([]models.Genome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genome file: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, "[") {
		var many []models.Genome
		if err := json.Unmarshal([]byte(text), &many); err == nil {
			return many, nil
		}
		var one models.Genome
		if err := json.Unmarshal([]byte(text), &one); err != nil {
			return nil, fmt.Errorf("failed to parse genome file %s: %w", path, err)
		}
		return []models.Genome{one}, nil
	}

	var out []models.Genome
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		g, err := parseGenome(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, i+1, err)
		}
		out = append(out, g)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("genome file %s is empty", path)
	}
	return out, nil
}
