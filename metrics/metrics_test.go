package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"css3d/rewrite"
)

func TestCollector_WriteFile(t *testing.T) {
	c := New()
	c.AddStats(rewrite.Stats{RulesProcessed: 5, TransformsConverted: 3, TransformsFailed: 1, TransformsSkipped: 1})
	c.AddCache(2, 3)
	c.FileDone("ok", 0.01)
	c.FileDone("failed", 0.02)

	path := filepath.Join(t.TempDir(), "css3d.prom")
	if err := c.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	for _, want := range []string{
		"css3d_rules_processed_total 5",
		`css3d_transforms_total{outcome="converted"} 3`,
		`css3d_transforms_total{outcome="failed"} 1`,
		`css3d_cache_lookups_total{result="hit"} 2`,
		`css3d_files_total{result="ok"} 1`,
		"css3d_file_duration_seconds_count 2",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output does not contain %q:\n%s", want, text)
		}
	}
}

func TestCollector_Nil(t *testing.T) {
	var c *Collector
	c.FileDone("ok", 1)
	c.AddStats(rewrite.Stats{RulesProcessed: 1})
	c.AddCache(1, 1)
	if err := c.WriteFile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Errorf("nil collector WriteFile() error = %v", err)
	}
}

func TestCollector_Gatherer(t *testing.T) {
	c := New()
	c.FileDone("ok", 0.5)

	families, err := c.Gatherer().Gather()
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, mf := range families {
		if mf.GetName() == "css3d_files_total" {
			found = true
		}
	}
	if !found {
		t.Error("css3d_files_total not gathered")
	}
}
