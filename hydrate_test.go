package islet

import "testing"

func TestParseMode(t *testing.T) {
	tests := []struct {
		token string
		want  Mode
	}{
		{"", ModeDefault},
		{"full", ModeFull},
		{"partial", ModePartial},
		{"none", ModeNone},
		{"eager", ModeDefault},
		{"FULL", ModeDefault},
		{"lazy", ModeDefault},
	}

	for _, tt := range tests {
		t.Run("token "+tt.token, func(t *testing.T) {
			if got := ParseMode(tt.token); got != tt.want {
				t.Errorf("ParseMode(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestPlanFor(t *testing.T) {
	tests := []struct {
		name       string
		mode       Mode
		hasContent bool
		want       hydrationPlan
	}{
		{"default empty", ModeDefault, false, hydrationPlan{actionRender, pathPlain}},
		{"default with content", ModeDefault, true, hydrationPlan{actionRender, pathPlain}},
		{"full empty", ModeFull, false, hydrationPlan{actionRender, pathHydrate}},
		{"full with content", ModeFull, true, hydrationPlan{actionRender, pathHydrate}},
		{"partial empty renders now", ModePartial, false, hydrationPlan{actionRender, pathPlain}},
		{"partial with content defers", ModePartial, true, hydrationPlan{actionDefer, pathHydrate}},
		{"none empty renders", ModeNone, false, hydrationPlan{actionRender, pathPlain}},
		{"none with content skips", ModeNone, true, hydrationPlan{actionSkip, pathPlain}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := planFor(tt.mode, tt.hasContent); got != tt.want {
				t.Errorf("planFor(%q, %v) = %+v, want %+v", tt.mode, tt.hasContent, got, tt.want)
			}
		})
	}
}
