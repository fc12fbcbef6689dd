package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Cache,AuditPublisher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/mock/gomock"

	"curpkit/internal/curp/metrics"
	"curpkit/internal/curp/models"
	"curpkit/internal/curp/service/mocks"
	"curpkit/internal/curp/store"
	"curpkit/pkg/curp"
	dErrors "curpkit/pkg/domain-errors"
	audit "curpkit/pkg/platform/audit"
	"curpkit/pkg/platform/sentinel"
	"curpkit/pkg/requestcontext"
)

func joseMartin() curp.Identity {
	return curp.Identity{
		GivenName:       "José Martín",
		PaternalSurname: "García",
		MaternalSurname: "López",
		BirthDate:       time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC),
		Sex:             curp.Male,
		Entity:          curp.DistritoFederal,
	}
}

func oscarRojas() curp.Identity {
	return curp.Identity{
		GivenName:       "Oscar",
		PaternalSurname: "Rojas",
		MaternalSurname: "Barrera",
		BirthDate:       time.Date(1985, time.March, 12, 0, 0, 0, 0, time.UTC),
		Sex:             curp.Male,
		Entity:          curp.NuevoLeon,
	}
}

type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	cache   *mocks.MockCache
	auditor *mocks.MockAuditPublisher
	metrics *metrics.Metrics
	spans   *tracetest.SpanRecorder
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.cache = mocks.NewMockCache(s.ctrl)
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.spans = tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(s.spans))

	s.service = New(
		WithCache(s.cache),
		WithAuditPublisher(s.auditor),
		WithMetrics(s.metrics),
		WithTracer(tp.Tracer("test")),
	)
}

func (s *ServiceSuite) ctx() context.Context {
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithClientID(ctx, "client-a")
	return requestcontext.WithTime(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
}

func (s *ServiceSuite) lastSpan() sdktrace.ReadOnlySpan {
	ended := s.spans.Ended()
	s.Require().NotEmpty(ended)
	return ended[len(ended)-1]
}

func (s *ServiceSuite) TestEncodeCacheMiss() {
	id := joseMartin()
	key := store.IdentityKey(id)

	s.cache.EXPECT().Find(gomock.Any(), key).Return(nil, sentinel.ErrNotFound)
	s.cache.EXPECT().Save(gomock.Any(), key, models.CachedCode{
		Code:      "GALM900515HDFRPR",
		Candidate: "GALM",
		CachedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}).Return(nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventCurpEncoded), e.Action)
			s.Equal(audit.OutcomeIssued, e.Outcome)
			s.Equal("client-a", e.ActorID)
			s.Equal(audit.HashSubject("GALM900515HDFRPR"), e.SubjectIDHash)
			s.NotContains(e.SubjectIDHash, "GARCIA")
			return nil
		})

	result, err := s.service.Encode(s.ctx(), id)
	s.Require().NoError(err)
	s.Equal(curp.Code("GALM900515HDFRPR"), result.Code)
	s.False(result.Cached)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.CacheLookups.WithLabelValues("miss")))

	span := s.lastSpan()
	s.Equal("curp.encode", span.Name())
	s.Contains(span.Attributes(), attribute.Bool("curp.cached", false))
}

func (s *ServiceSuite) TestEncodeCacheHit() {
	id := joseMartin()
	s.cache.EXPECT().Find(gomock.Any(), store.IdentityKey(id)).Return(&models.CachedCode{
		Code:      "GALM900515HDFRPR",
		Candidate: "GALM",
	}, nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.service.Encode(s.ctx(), id)
	s.Require().NoError(err)
	s.True(result.Cached)
	s.Equal("GALM", result.Segments.Identity)
	s.Equal("RPR", result.Segments.Differentiator)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.CacheLookups.WithLabelValues("hit")))
}

func (s *ServiceSuite) TestEncodeCorruptCacheEntryIsRecomputed() {
	id := joseMartin()
	s.cache.EXPECT().Find(gomock.Any(), gomock.Any()).Return(&models.CachedCode{Code: "garbage"}, nil)
	s.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.service.Encode(s.ctx(), id)
	s.Require().NoError(err)
	s.False(result.Cached)
	s.Equal(curp.Code("GALM900515HDFRPR"), result.Code)
}

func (s *ServiceSuite) TestEncodeCacheFailuresDoNotFailEncode() {
	s.cache.EXPECT().Find(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrUnavailable)
	s.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(sentinel.ErrUnavailable)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("audit down"))

	result, err := s.service.Encode(s.ctx(), joseMartin())
	s.Require().NoError(err)
	s.Equal(curp.Code("GALM900515HDFRPR"), result.Code)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.CacheLookups.WithLabelValues("error")))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.AuditDropped))
}

func (s *ServiceSuite) TestEncodeFilteredPrefix() {
	s.cache.EXPECT().Find(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
	s.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, rec models.CachedCode) error {
			s.True(rec.Filtered)
			s.Equal("ROBO", rec.Candidate)
			return nil
		})
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	result, err := s.service.Encode(s.ctx(), oscarRojas())
	s.Require().NoError(err)
	s.Equal(curp.Code("RXBO850312HNLJRS"), result.Code)
	s.True(result.Segments.Filtered)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.OffensiveFiltered))
}

func (s *ServiceSuite) TestEncodeInvalidInput() {
	id := joseMartin()
	id.PaternalSurname = "  de la  "

	s.cache.EXPECT().Find(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventCurpRejected), e.Action)
			s.Equal(audit.OutcomeRejected, e.Outcome)
			return nil
		})

	_, err := s.service.Encode(s.ctx(), id)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.ErrorIs(err, curp.ErrInvalidInput)
	var de *dErrors.Error
	s.Require().ErrorAs(err, &de)
	s.Equal("paternal_surname: must contain at least one non-filler word", de.Message)
	s.Equal(1, strings.Count(err.Error(), "must contain"), "engine message appears once: %s", err)

	span := s.lastSpan()
	s.Equal(codes.Error, span.Status().Code)
}

func (s *ServiceSuite) TestValidate() {
	id := joseMartin()
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	tests := []struct {
		name       string
		candidate  string
		mode       models.ValidateMode
		valid      bool
		wellFormed bool
	}{
		{"prefix accepts full curp", "GALM900515HDFRPR07", models.ModePrefix16, true, true},
		{"strict rejects full curp", "GALM900515HDFRPR07", models.ModeStrict, false, true},
		{"strict accepts exact code", "GALM900515HDFRPR", models.ModeStrict, true, true},
		{"mismatch", "GALM900515MDFRPR", models.ModePrefix16, false, true},
		{"malformed", "GALM9005X5HDFRPR", models.ModePrefix16, false, false},
		{"lower case is neither valid nor well formed", "galm900515hdfrpr", models.ModePrefix16, false, false},
		{"lower case homoclave is not inspected", "GALM900515HDFRPRa7", models.ModePrefix16, true, true},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			res, err := s.service.Validate(s.ctx(), id, tt.candidate, tt.mode)
			s.Require().NoError(err)
			s.Equal(tt.valid, res.Valid)
			s.Equal(tt.wellFormed, res.WellFormed)
		})
	}
}

func (s *ServiceSuite) TestValidateShortCandidate() {
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

	_, err := s.service.Validate(s.ctx(), joseMartin(), "GALM", models.ModePrefix16)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestEncodeRejectsInvalidEntityBeforeCache() {
	id := joseMartin()
	id.Entity = "df"
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventCurpRejected), e.Action)
			s.Empty(e.SubjectIDHash)
			return nil
		})

	_, err := s.service.Encode(s.ctx(), id)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.ErrorIs(err, curp.ErrInvalidInput)
}

func (s *ServiceSuite) TestValidateUnknownMode() {
	_, err := s.service.Validate(s.ctx(), joseMartin(), "GALM900515HDFRPR", "fuzzy")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestNameMatch() {
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventCurpNameMatched), e.Action)
			s.Equal(audit.OutcomeMatch, e.Outcome)
			return nil
		})

	matched, err := s.service.NameMatch(s.ctx(), models.NameQuery{
		GivenName:       "José Martín",
		PaternalSurname: "García",
		MaternalSurname: "López",
		Code:            "GALM000101MJCRPR",
	})
	s.Require().NoError(err)
	s.True(matched)
}

func (s *ServiceSuite) TestParse() {
	code, err := s.service.Parse(s.ctx(), " galm900515hdfrpr ")
	s.Require().NoError(err)
	s.Equal(curp.DistritoFederal, code.Entity())

	_, err = s.service.Parse(s.ctx(), "GALM900515HZZRPR")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.ErrorIs(err, curp.ErrMalformedCandidate)
}

func (s *ServiceSuite) TestEntities() {
	entities := s.service.Entities()
	s.NotEmpty(entities)
	s.Equal(curp.Entities(), entities)
}

func TestEncodeBatch(t *testing.T) {
	auditor := &recordingAuditor{}
	svc := New(
		WithCache(store.NewInMemoryCache(time.Minute)),
		WithAuditPublisher(auditor),
		WithBatchLimits(3, 2),
	)
	bad := joseMartin()
	bad.GivenName = ""

	results, err := svc.EncodeBatch(context.Background(), []curp.Identity{joseMartin(), bad, oscarRojas()})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, curp.Code("GALM900515HDFRPR"), results[0].Code)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[1].Index)
	assert.True(t, dErrors.HasCode(results[1].Err, dErrors.CodeValidation))
	assert.Equal(t, curp.Code("RXBO850312HNLJRS"), results[2].Code)

	batchEvents := auditor.byAction(string(audit.EventBatchProcessed))
	require.Len(t, batchEvents, 1)
	assert.Equal(t, "items=3 failed=1", batchEvents[0].Reason)

	t.Run("too many items", func(t *testing.T) {
		_, err := svc.EncodeBatch(context.Background(), make([]curp.Identity, 4))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("empty batch", func(t *testing.T) {
		_, err := svc.EncodeBatch(context.Background(), nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := svc.EncodeBatch(ctx, []curp.Identity{joseMartin()})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestEncodeResultDoesNotDependOnCacheState(t *testing.T) {
	svc := New(WithCache(store.NewInMemoryCache(time.Minute)))
	lower := joseMartin()
	lower.Entity = "df"

	_, coldErr := svc.Encode(context.Background(), lower)
	require.Error(t, coldErr)

	_, err := svc.Encode(context.Background(), joseMartin())
	require.NoError(t, err)

	_, warmErr := svc.Encode(context.Background(), lower)
	require.Error(t, warmErr)
	assert.Equal(t, coldErr.Error(), warmErr.Error())
}

func TestAuditSubjectIsSharedAcrossOperations(t *testing.T) {
	auditor := &recordingAuditor{}
	svc := New(WithCache(store.NewInMemoryCache(time.Minute)), WithAuditPublisher(auditor))
	ctx := context.Background()
	id := joseMartin()

	_, err := svc.Encode(ctx, id)
	require.NoError(t, err)
	_, err = svc.Encode(ctx, id)
	require.NoError(t, err)
	_, err = svc.Validate(ctx, id, "GALM900515HDFRPR07", models.ModePrefix16)
	require.NoError(t, err)
	_, err = svc.NameMatch(ctx, models.NameQuery{
		GivenName:       id.GivenName,
		PaternalSurname: id.PaternalSurname,
		MaternalSurname: id.MaternalSurname,
		Code:            "GALM900515HDFRPR07",
	})
	require.NoError(t, err)

	want := audit.HashSubject("GALM900515HDFRPR")
	require.Len(t, auditor.events, 4)
	for _, e := range auditor.events {
		assert.Equal(t, want, e.SubjectIDHash, e.Action)
	}
}

func TestServiceWithoutCollaborators(t *testing.T) {
	svc := New()
	result, err := svc.Encode(context.Background(), joseMartin())
	require.NoError(t, err)
	assert.Equal(t, curp.Code("GALM900515HDFRPR"), result.Code)
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAuditor) Emit(_ context.Context, e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingAuditor) byAction(action string) []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Event
	for _, e := range r.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}
