package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/liftlab/coach-engine/internal/observability"
)

// Ranking weights and thresholds. These are load-bearing constants: changing
// them changes which templates clients receive.
const (
	frequencyWeight    = 0.5
	equipmentWeight    = 0.35
	experienceWeight   = 0.15
	experienceGapCost  = 0.4
	equipmentThreshold = 0.6
	maxResults         = 3
)

// experienceRanks maps experience labels to ordinals for gap computation.
// Unknown labels rank as intermediate.
var experienceRanks = map[string]int{
	"beginner":     0,
	"novice":       0,
	"intermediate": 1,
	"advanced":     2,
}

// Request describes what a client is looking for.
type Request struct {
	Goal            string   `json:"goal"`
	ExperienceLevel string   `json:"experience_level"`
	AvailableDays   int      `json:"available_days"`
	Equipment       []string `json:"equipment"`
}

// Recommendation is an ordered set of up to three templates with a
// human-readable rationale.
type Recommendation struct {
	Items     []WorkoutTemplate `json:"items"`
	Rationale string            `json:"rationale"`
}

type rankedTemplate struct {
	template WorkoutTemplate
	score    float64
}

// Engine recommends workout templates by exact matching with a weighted
// ranking fallback. Safe for concurrent use; the catalog is never mutated.
type Engine struct {
	templates []WorkoutTemplate
	logger    *observability.Logger
}

// NewEngine loads the catalog from the given path and constructs an engine.
// Fails with ErrCatalogMissing when the source is absent.
func NewEngine(catalogPath string, logger *observability.Logger) (*Engine, error) {
	templates, err := LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("templates", len(templates)).Str("path", catalogPath).Msg("workout catalog loaded")
	return NewEngineFromTemplates(templates, logger), nil
}

// NewEngineFromTemplates constructs an engine over an already-loaded catalog.
func NewEngineFromTemplates(templates []WorkoutTemplate, logger *observability.Logger) *Engine {
	return &Engine{
		templates: templates,
		logger:    logger.WithComponent("recommender"),
	}
}

// Templates returns the loaded catalog. Callers must not mutate it.
func (e *Engine) Templates() []WorkoutTemplate {
	return e.templates
}

// Recommend returns exact matches when any template satisfies all four
// predicates, otherwise the closest templates by weighted score. A
// well-formed request never errors; an empty catalog yields empty items
// with the fallback rationale.
func (e *Engine) Recommend(req Request) Recommendation {
	var primary []WorkoutTemplate
	for _, tpl := range e.templates {
		if isGoalMatch(tpl, req) && isExperienceMatch(tpl, req) && isFrequencyMatch(tpl, req) && isEquipmentMatch(tpl, req) {
			primary = append(primary, tpl)
		}
	}

	if len(primary) > 0 {
		rationale := fmt.Sprintf(
			"Identified %d template(s) aligned with goal '%s' and %d weekly sessions.",
			len(primary), req.Goal, req.AvailableDays,
		)
		if len(primary) > maxResults {
			primary = primary[:maxResults]
		}
		return Recommendation{Items: primary, Rationale: rationale}
	}

	ranked := e.rank(req)
	items := make([]WorkoutTemplate, 0, maxResults)
	for _, r := range ranked {
		items = append(items, r.template)
		if len(items) == maxResults {
			break
		}
	}
	return Recommendation{
		Items: items,
		Rationale: "No exact template fit. Returning closest options based on frequency, " +
			"equipment coverage, and experience similarity.",
	}
}

// rank scores every template against the request. Stable sort keeps catalog
// order for ties.
func (e *Engine) rank(req Request) []rankedTemplate {
	ranked := make([]rankedTemplate, 0, len(e.templates))
	for _, tpl := range e.templates {
		freqGap := frequencyGap(tpl, req)
		equipScore := equipmentOverlap(tpl, req)
		expGap := float64(abs(experienceRank(tpl.ExperienceLevel) - experienceRank(req.ExperienceLevel)))

		score := (1.0-freqGap)*frequencyWeight +
			equipScore*equipmentWeight +
			(1.0-expGap*experienceGapCost)*experienceWeight

		ranked = append(ranked, rankedTemplate{template: tpl, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	return ranked
}

func isGoalMatch(tpl WorkoutTemplate, req Request) bool {
	reqGoal := strings.ToLower(req.Goal)
	tplGoal := strings.ToLower(tpl.Goal)
	return strings.Contains(tplGoal, reqGoal) || strings.Contains(reqGoal, tplGoal)
}

func isExperienceMatch(tpl WorkoutTemplate, req Request) bool {
	return experienceRank(tpl.ExperienceLevel) <= experienceRank(req.ExperienceLevel)
}

func isFrequencyMatch(tpl WorkoutTemplate, req Request) bool {
	for _, freq := range tpl.WeeklyFrequencyOptions {
		if freq == req.AvailableDays {
			return true
		}
	}
	return false
}

func isEquipmentMatch(tpl WorkoutTemplate, req Request) bool {
	if len(tpl.Equipment) == 0 {
		return true
	}
	if len(req.Equipment) == 0 {
		return false
	}
	return equipmentOverlap(tpl, req) >= equipmentThreshold
}

func experienceRank(label string) int {
	if rank, ok := experienceRanks[strings.ToLower(label)]; ok {
		return rank
	}
	return 1
}

// frequencyGap is the smallest distance between the requested day count and
// any supported option, normalized by 4 and capped at 1.0.
func frequencyGap(tpl WorkoutTemplate, req Request) float64 {
	if len(tpl.WeeklyFrequencyOptions) == 0 {
		return 1.0
	}
	best := abs(tpl.WeeklyFrequencyOptions[0] - req.AvailableDays)
	for _, freq := range tpl.WeeklyFrequencyOptions[1:] {
		if gap := abs(freq - req.AvailableDays); gap < best {
			best = gap
		}
	}
	gap := float64(best) / 4.0
	if gap > 1.0 {
		return 1.0
	}
	return gap
}

// equipmentOverlap is the fraction of the template's required equipment the
// request supplies: 1.0 when the template needs nothing, 0.0 when it needs
// something and the request supplies nothing.
func equipmentOverlap(tpl WorkoutTemplate, req Request) float64 {
	if len(tpl.Equipment) == 0 {
		return 1.0
	}
	if len(req.Equipment) == 0 {
		return 0.0
	}

	available := make(map[string]struct{}, len(req.Equipment))
	for _, item := range req.Equipment {
		available[strings.ToLower(item)] = struct{}{}
	}

	required := make(map[string]struct{}, len(tpl.Equipment))
	overlap := 0
	for _, item := range tpl.Equipment {
		key := strings.ToLower(item)
		if _, dup := required[key]; dup {
			continue
		}
		required[key] = struct{}{}
		if _, ok := available[key]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(required))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
