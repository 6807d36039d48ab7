package dashboard

import (
	"log/slog"

	"github.com/joseph-ayodele/receipts-insights/internal/dataset"
	"github.com/joseph-ayodele/receipts-insights/internal/demographics"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
	"github.com/joseph-ayodele/receipts-insights/internal/filter"
	"github.com/joseph-ayodele/receipts-insights/internal/metrics"
	"github.com/joseph-ayodele/receipts-insights/internal/redact"
	"github.com/joseph-ayodele/receipts-insights/internal/snapshot"
)

// FilteredView is the analyst-side view of one filter selection.
type FilteredView struct {
	Filters  entity.FilterSpec
	Records  []entity.Record
	Computed entity.ComputedView
	Options  filter.Options
}

// DemographicsView is the analysis of one survey question.
type DemographicsView struct {
	Question  entity.DemographicBreakdown
	CrossTab  []entity.CrossTabRow
	Summary   map[string][]entity.Share
	Questions []entity.QuestionField
}

// Service exposes the query operations over a dataset. It holds no
// dashboard state; every call recomputes from its arguments.
type Service struct {
	builder *snapshot.Builder
	logger  *slog.Logger
}

func NewService(builder *snapshot.Builder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if builder == nil {
		builder = snapshot.NewBuilder(snapshot.WithLogger(logger))
	}
	return &Service{builder: builder, logger: logger}
}

// ComputeFilteredView filters ds by spec and aggregates the result.
func (s *Service) ComputeFilteredView(ds *dataset.Dataset, spec entity.FilterSpec) FilteredView {
	records := filter.Apply(ds.Records(), spec)
	view := metrics.BuildView(records)
	s.logger.Debug("filtered view computed", "records", len(records), "dataset_size", ds.Len())
	return FilteredView{
		Filters:  spec.Clone(),
		Records:  records,
		Computed: view,
		Options:  filter.BuildOptions(ds.Records()),
	}
}

// ComputeComparison aggregates primary and comparison periods. A nil
// comparison uses the window preceding primary; ok is false when no window
// can be derived.
func (s *Service) ComputeComparison(ds *dataset.Dataset, primary entity.FilterSpec, comparison *entity.FilterSpec) (entity.Comparison, bool) {
	var prev entity.FilterSpec
	if comparison != nil {
		prev = *comparison
	} else {
		var ok bool
		prev, ok = filter.ComparisonSpec(primary, ds.Records())
		if !ok {
			return entity.Comparison{}, false
		}
	}
	cur := metrics.Aggregate(filter.Apply(ds.Records(), primary))
	old := metrics.Aggregate(filter.Apply(ds.Records(), prev))
	return metrics.Compare(cur, old), true
}

// ComputeDemographics analyses question n over ds filtered by spec and
// narrowed by groups. selected picks the responses to cross-tabulate; empty
// means all of them.
func (s *Service) ComputeDemographics(ds *dataset.Dataset, spec entity.FilterSpec, n int, selected []string, groups demographics.GroupFilter) DemographicsView {
	records := groups.Apply(filter.Apply(ds.Records(), spec))
	return DemographicsView{
		Question:  demographics.Analyze(records, n),
		CrossTab:  demographics.CrossTabulate(records, n, selected),
		Summary:   demographics.Summary(records),
		Questions: ds.Questions(),
	}
}

// BuildSnapshot builds the share bundle for cfg without persisting it.
func (s *Service) BuildSnapshot(ds *dataset.Dataset, cfg entity.ShareConfig) (entity.Snapshot, error) {
	return s.builder.Build(ds, cfg)
}

// ApplyRedaction previews what a client would see of view under cfg.
func (s *Service) ApplyRedaction(view entity.ComputedView, cfg entity.ShareConfig) entity.ClientView {
	return redact.Apply(view, cfg)
}

// StateView computes the filtered view for a dashboard state.
func (s *Service) StateView(ds *dataset.Dataset, st State) FilteredView {
	return s.ComputeFilteredView(ds, st.Filters)
}

// StateDemographics analyses the state's selected question; ok is false when
// no question is selected.
func (s *Service) StateDemographics(ds *dataset.Dataset, st State) (DemographicsView, bool) {
	if st.Question == 0 {
		return DemographicsView{}, false
	}
	return s.ComputeDemographics(ds, st.Filters, st.Question, st.Responses.Values(), st.Groups), true
}
