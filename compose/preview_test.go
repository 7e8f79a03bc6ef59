package compose

import (
	"testing"

	"github.com/nikronic/niklib/pkg/log"
)

func TestPreviewColumnTransformer(t *testing.T) {
	df := configFrame(t)
	provider, recorded := log.NewTestProvider(log.LevelDebug)

	ct := NewColumnTransformer(demoSteps(), provider)
	if err := ct.Fit(df); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if err := PreviewColumnTransformer(ct, df, 2, provider); err != nil {
		t.Fatalf("PreviewColumnTransformer failed: %v", err)
	}

	if !recorded.Contains("one-hot vocabulary") {
		t.Error("expected a vocabulary line for the one-hot step")
	}
	if !recorded.Contains("sample row") {
		t.Error("expected sampled rows in the output")
	}
}

func TestPreviewColumnTransformerNilFrame(t *testing.T) {
	provider, _ := log.NewTestProvider(log.LevelDebug)
	ct := NewColumnTransformer(demoSteps(), provider)
	if err := PreviewColumnTransformer(ct, nil, 2, provider); err == nil {
		t.Fatal("expected error for nil frame")
	}
}
