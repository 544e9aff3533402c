package guard

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"gopkg.in/yaml.v3"
)

// RedTeamCase is a single adversarial query regression case loaded from YAML.
type RedTeamCase struct {
	ID          string   `yaml:"id"`
	Query       string   `yaml:"query"`
	Reject      bool     `yaml:"reject"`
	Expected    []string `yaml:"expected"`
	Description string   `yaml:"description"`
}

// RedTeamSuite is the top-level YAML structure.
type RedTeamSuite struct {
	Cases []RedTeamCase `yaml:"cases"`
}

func loadRedTeamCases(t *testing.T) []RedTeamCase {
	t.Helper()

	_, filename, _, _ := runtime.Caller(0)
	path := filepath.Join(filepath.Dir(filename), "testdata", "redteam_cases.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read red-team cases: %v", err)
	}

	var suite RedTeamSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		t.Fatalf("failed to parse red-team YAML: %v", err)
	}
	if len(suite.Cases) == 0 {
		t.Fatal("no red-team cases loaded")
	}
	return suite.Cases
}

// TestRedTeamGuard runs every adversarial case through the default guard and
// asserts both the reject decision and the expected signal set.
func TestRedTeamGuard(t *testing.T) {
	cases := loadRedTeamCases(t)
	g := New(nil)

	var passed, failed int
	for _, tc := range cases {
		t.Run(tc.ID, func(t *testing.T) {
			v := g.Check(tc.Query)

			ok := true
			if v.Rejected != tc.Reject {
				t.Errorf("%s: rejected=%v, want %v (%s)", tc.ID, v.Rejected, tc.Reject, tc.Description)
				ok = false
			}
			for _, want := range tc.Expected {
				if !hasSignal(v.Signals, want) {
					t.Errorf("%s: missing signal %q, got %v", tc.ID, want, v.SignalIDs())
					ok = false
				}
			}
			if !tc.Reject && len(v.Signals) > 0 {
				t.Errorf("%s: benign query produced signals %v", tc.ID, v.SignalIDs())
				ok = false
			}
			if ok {
				passed++
			} else {
				failed++
			}
		})
	}
	t.Logf("red-team suite: %d passed, %d failed", passed, failed)
}
