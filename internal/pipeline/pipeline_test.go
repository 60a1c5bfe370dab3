package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/voxreel/voxreel/internal/config"
	"github.com/voxreel/voxreel/internal/domain"
	"github.com/voxreel/voxreel/internal/media"
	"github.com/voxreel/voxreel/internal/repository"
	"github.com/voxreel/voxreel/internal/timing"
)

// --- fakes ---

type fakeTranscriber struct {
	calls int
	text  string
	err   error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakePlanner struct {
	planCalls    int
	segmentCalls int
	adjustCalls  int
	lastRequest  media.PlanRequest
	plan         domain.ReelPlan
	segments     []domain.SegmentContent
}

func (f *fakePlanner) PlanReel(ctx context.Context, transcript string, req media.PlanRequest) (*domain.ReelPlan, error) {
	f.planCalls++
	f.lastRequest = req
	plan := f.plan
	return &plan, nil
}

func (f *fakePlanner) GenerateSegmentContent(ctx context.Context, plan *domain.ReelPlan, transcript string) ([]domain.SegmentContent, error) {
	f.segmentCalls++
	out := make([]domain.SegmentContent, len(f.segments))
	copy(out, f.segments)
	return out, nil
}

func (f *fakePlanner) AdjustCommentaryLength(ctx context.Context, segments []domain.SegmentContent, direction string, targetSeconds float64) ([]domain.SegmentContent, error) {
	f.adjustCalls++
	return segments, nil
}

type fakeStoryPlanner struct {
	*fakePlanner
	modeCalls   int
	intentCalls int
	scriptCalls int
	mode        domain.ContentMode
	beats       []domain.ParableBeat
}

func (f *fakeStoryPlanner) DetectContentMode(ctx context.Context, transcript, description string) (domain.ContentMode, error) {
	f.modeCalls++
	return f.mode, nil
}

func (f *fakeStoryPlanner) ExtractParableIntent(ctx context.Context, transcript string) (string, error) {
	f.intentCalls++
	return "discipline compounds quietly", nil
}

func (f *fakeStoryPlanner) GenerateParableScript(ctx context.Context, intent string, targetSeconds float64) ([]domain.ParableBeat, error) {
	f.scriptCalls++
	out := make([]domain.ParableBeat, len(f.beats))
	copy(out, f.beats)
	return out, nil
}

type fakeSynthesizer struct {
	calls     int
	requests  []media.SpeechRequest
	durations []float64
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, req media.SpeechRequest) (*media.SpeechResult, error) {
	f.requests = append(f.requests, req)
	i := f.calls
	if i >= len(f.durations) {
		i = len(f.durations) - 1
	}
	f.calls++
	return &media.SpeechResult{
		AudioURL:        fmt.Sprintf("https://cdn.test/vo-%d.mp3", f.calls),
		DurationSeconds: f.durations[i],
	}, nil
}

type fakeImageGenerator struct{ calls int }

func (f *fakeImageGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return fmt.Sprintf("https://cdn.test/img-%d.png", f.calls), nil
}

type fakeVideoGenerator struct{ calls int }

func (f *fakeVideoGenerator) GenerateClip(ctx context.Context, req media.ClipRequest) (string, error) {
	f.calls++
	return fmt.Sprintf("https://cdn.test/clip-%d.mp4", f.calls), nil
}

type fakeSubtitleGenerator struct{ calls int }

func (f *fakeSubtitleGenerator) GenerateSubtitles(ctx context.Context, audioURL string) (string, error) {
	f.calls++
	return "https://cdn.test/subs.ass", nil
}

type fakeRenderer struct {
	calls    int
	manifest *domain.RenderManifest
}

func (f *fakeRenderer) Render(ctx context.Context, manifest *domain.RenderManifest) (string, error) {
	f.calls++
	f.manifest = manifest
	return "https://cdn.test/final.mp4", nil
}

type fakeMusicSelector struct{ calls int }

func (f *fakeMusicSelector) SelectTrack(ctx context.Context, mood string, tags []string) (*media.MusicTrack, error) {
	f.calls++
	return &media.MusicTrack{URL: "https://cdn.test/music.mp3", DurationSeconds: 120, Mood: mood}, nil
}

type fakeNotifier struct {
	statuses []domain.JobStatus
}

func (f *fakeNotifier) Notify(ctx context.Context, job *domain.VideoJob) {
	f.statuses = append(f.statuses, job.Status)
}

// recordingStore wraps a JobStore and records published status transitions.
type recordingStore struct {
	repository.JobStore
	statuses []domain.JobStatus
}

func (r *recordingStore) UpdateStatus(ctx context.Context, id string, status domain.JobStatus, stepLabel string) error {
	r.statuses = append(r.statuses, status)
	return r.JobStore.UpdateStatus(ctx, id, status, stepLabel)
}

// --- helpers ---

type testEnv struct {
	store       *recordingStore
	transcriber *fakeTranscriber
	synth       *fakeSynthesizer
	images      *fakeImageGenerator
	videos      *fakeVideoGenerator
	subtitles   *fakeSubtitleGenerator
	renderer    *fakeRenderer
	music       *fakeMusicSelector
	notifier    *fakeNotifier
	runner      *Runner
}

func newTestEnv(t *testing.T, planner media.Planner, synthDurations []float64) *testEnv {
	t.Helper()
	env := &testEnv{
		store:       &recordingStore{JobStore: repository.NewMemoryJobStore()},
		transcriber: &fakeTranscriber{text: "here is my thought for today"},
		synth:       &fakeSynthesizer{durations: synthDurations},
		images:      &fakeImageGenerator{},
		videos:      &fakeVideoGenerator{},
		subtitles:   &fakeSubtitleGenerator{},
		renderer:    &fakeRenderer{},
		music:       &fakeMusicSelector{},
		notifier:    &fakeNotifier{},
	}
	env.runner = NewRunner(Deps{
		Store:       env.store,
		Transcriber: env.transcriber,
		Planner:     planner,
		Synthesizer: env.synth,
		Images:      env.images,
		Videos:      env.videos,
		Subtitles:   env.subtitles,
		Renderer:    env.renderer,
		Music:       env.music,
		Notifier:    env.notifier,
		Pipeline: config.PipelineConfig{
			WordsPerSecond:    2.5,
			MaxClipSeconds:    10,
			ClipConcurrency:   2,
			CommentaryRetries: 2,
		},
	})
	return env
}

func (env *testEnv) createJob(t *testing.T, job *domain.VideoJob) *domain.VideoJob {
	t.Helper()
	if job.SourceAudioURL == "" {
		job.SourceAudioURL = "https://cdn.test/note.mp3"
	}
	if err := env.store.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

// wordsFor builds indexed filler narration of exactly n words.
func wordsFor(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ")
}

// fittingSegments builds count segments whose combined estimate lands
// inside the acceptance band for target at 2.5 words per second.
func fittingSegments(count int, target float64) []domain.SegmentContent {
	perSegment := int(target*2.5*0.97) / count
	segments := make([]domain.SegmentContent, count)
	for i := range segments {
		segments[i] = domain.SegmentContent{
			Index:       i,
			Commentary:  wordsFor(perSegment),
			ImagePrompt: fmt.Sprintf("scene %d", i),
		}
	}
	return segments
}

func directPlanner(target float64, segmentCount int) *fakePlanner {
	return &fakePlanner{
		plan: domain.ReelPlan{
			TargetDurationSeconds: target,
			SegmentCount:          segmentCount,
			Mood:                  "uplifting",
			Theme:                 "minimal",
			MusicTags:             []string{"calm"},
		},
		segments: fittingSegments(segmentCount, target),
	}
}

func storyPlanner(target float64) *fakeStoryPlanner {
	beats := make([]domain.ParableBeat, 4)
	for i := range beats {
		beats[i] = domain.ParableBeat{
			Index:   i,
			Title:   fmt.Sprintf("act %d", i+1),
			Script:  wordsFor(10),
			Visual:  fmt.Sprintf("beat visual %d", i),
			Seconds: target / 4,
		}
	}
	return &fakeStoryPlanner{
		fakePlanner: &fakePlanner{
			plan: domain.ReelPlan{
				TargetDurationSeconds: target,
				SegmentCount:          4,
				Mood:                  "reflective",
				Theme:                 "fable",
			},
			segments: fittingSegments(4, target),
		},
		mode:  domain.ContentModeDirect,
		beats: beats,
	}
}

// --- tests ---

func TestRunnerCompletesDirectImageJob(t *testing.T) {
	planner := directPlanner(45, 3)
	env := newTestEnv(t, planner, []float64{44})
	job := env.createJob(t, &domain.VideoJob{})

	if err := env.runner.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, err := env.store.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.JobStatusCompleted {
		t.Fatalf("status = %s, want completed", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt not set")
	}
	if got.FinalVideoURL == "" {
		t.Error("FinalVideoURL not set")
	}
	if got.ContentMode != domain.ContentModeDirect {
		t.Errorf("content mode = %s, want direct-message", got.ContentMode)
	}
	if got.RenderStrategy != domain.RenderStrategyImages {
		t.Errorf("render strategy = %s, want images", got.RenderStrategy)
	}
	if len(got.ImageURLs) != 3 {
		t.Errorf("image count = %d, want 3", len(got.ImageURLs))
	}
	if len(got.ClipURLs) != 0 {
		t.Errorf("clip count = %d, want 0", len(got.ClipURLs))
	}
	if env.synth.calls != 1 {
		t.Errorf("synthesizer calls = %d, want 1", env.synth.calls)
	}
	if planner.adjustCalls != 0 {
		t.Errorf("adjust calls = %d, want 0", planner.adjustCalls)
	}
	if env.videos.calls != 0 {
		t.Errorf("video generator calls = %d, want 0", env.videos.calls)
	}

	wantStatuses := []domain.JobStatus{
		domain.JobStatusTranscribing,
		domain.JobStatusDetectingMode,
		domain.JobStatusPlanning,
		domain.JobStatusGeneratingComment,
		domain.JobStatusSynthesizingVoice,
		domain.JobStatusSelectingMusic,
		domain.JobStatusGeneratingImages,
		domain.JobStatusGeneratingSubtitles,
		domain.JobStatusBuildingManifest,
		domain.JobStatusRendering,
	}
	if len(env.store.statuses) != len(wantStatuses) {
		t.Fatalf("published statuses = %v, want %v", env.store.statuses, wantStatuses)
	}
	for i, want := range wantStatuses {
		if env.store.statuses[i] != want {
			t.Errorf("status[%d] = %s, want %s", i, env.store.statuses[i], want)
		}
	}

	if len(env.notifier.statuses) != 1 || env.notifier.statuses[0] != domain.JobStatusCompleted {
		t.Errorf("notifier statuses = %v, want [completed]", env.notifier.statuses)
	}
}

func TestRunnerResumeWithFullContextMakesNoRemoteCalls(t *testing.T) {
	planner := directPlanner(45, 3)
	env := newTestEnv(t, planner, []float64{44})
	job := env.createJob(t, &domain.VideoJob{})

	ctx := context.Background()
	mode := domain.ContentModeDirect
	strategy := domain.RenderStrategyImages
	plan := planner.plan
	err := env.store.Update(ctx, job.ID, &repository.JobPatch{
		Transcript:        repository.Ptr("already transcribed"),
		Instructions:      &domain.JobInstructions{},
		ContentMode:       &mode,
		RenderStrategy:    &strategy,
		Plan:              &plan,
		Segments:          fittingSegments(3, 45),
		VoiceoverURL:      repository.Ptr("https://cdn.test/vo.mp3"),
		VoiceoverDuration: repository.Ptr(44.0),
		MusicURL:          repository.Ptr("https://cdn.test/music.mp3"),
		MusicDuration:     repository.Ptr(120.0),
		ImageURLs:         domain.StringArray{"a.png", "b.png", "c.png"},
		SubtitlesURL:      repository.Ptr("https://cdn.test/subs.ass"),
		FinalVideoURL:     repository.Ptr("https://cdn.test/final.mp4"),
	})
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}
	if err := env.store.UpdateStatus(ctx, job.ID, domain.JobStatusRendering, "render"); err != nil {
		t.Fatalf("seed status: %v", err)
	}
	env.store.statuses = nil

	if err := env.runner.Run(ctx, job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if env.transcriber.calls+planner.planCalls+planner.segmentCalls+planner.adjustCalls+
		env.synth.calls+env.images.calls+env.videos.calls+env.subtitles.calls+
		env.renderer.calls+env.music.calls != 0 {
		t.Error("resume with full context made remote calls")
	}
	if len(env.store.statuses) != 0 {
		t.Errorf("published statuses on full resume: %v", env.store.statuses)
	}

	got, _ := env.store.Get(ctx, job.ID)
	if got.Status != domain.JobStatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
}

func TestRunnerFailureMarksJobFailed(t *testing.T) {
	planner := directPlanner(45, 3)
	env := newTestEnv(t, planner, []float64{44})
	env.transcriber.err = errors.New("backend unavailable")
	job := env.createJob(t, &domain.VideoJob{})

	if err := env.runner.Run(context.Background(), job.ID); err == nil {
		t.Fatal("Run succeeded, want error")
	}

	got, err := env.store.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.JobStatusFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
	if got.Error == "" {
		t.Error("error message not recorded")
	}
	if got.FinalVideoURL != "" {
		t.Errorf("FinalVideoURL = %q on failed job", got.FinalVideoURL)
	}
	if len(env.notifier.statuses) != 1 || env.notifier.statuses[0] != domain.JobStatusFailed {
		t.Errorf("notifier statuses = %v, want [failed]", env.notifier.statuses)
	}
}

func TestRunnerTerminalJobIsLeftAlone(t *testing.T) {
	planner := directPlanner(45, 3)
	env := newTestEnv(t, planner, []float64{44})
	job := env.createJob(t, &domain.VideoJob{})
	env.store.Fail(context.Background(), job.ID, "earlier failure")

	if err := env.runner.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if env.transcriber.calls != 0 {
		t.Error("terminal job triggered pipeline work")
	}
	if len(env.notifier.statuses) != 0 {
		t.Errorf("notifier fired on terminal job: %v", env.notifier.statuses)
	}
}

func TestContentModeShortCircuitsOnAnimationKeywords(t *testing.T) {
	planner := storyPlanner(60)
	env := newTestEnv(t, planner, []float64{58})
	job := env.createJob(t, &domain.VideoJob{
		Description: "a 1 minute animation video about discipline",
	})

	if err := env.runner.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, _ := env.store.Get(context.Background(), job.ID)
	if got.ContentMode != domain.ContentModeParable {
		t.Fatalf("content mode = %s, want parable", got.ContentMode)
	}
	if planner.modeCalls != 0 {
		t.Errorf("mode detector called %d times, want short-circuit", planner.modeCalls)
	}
	if got.RenderStrategy != domain.RenderStrategyAnimated {
		t.Errorf("render strategy = %s, want animated", got.RenderStrategy)
	}
	if planner.intentCalls != 1 {
		t.Errorf("intent calls = %d, want 1", planner.intentCalls)
	}
	if planner.scriptCalls != 1 {
		t.Errorf("script calls = %d, want 1", planner.scriptCalls)
	}
	if got.Plan == nil || len(got.Plan.Beats) != 4 {
		t.Fatal("plan missing four-beat script")
	}

	// The spoken "1 minute" pins the planning range to 60s.
	if planner.lastRequest.MinSeconds != 60 || planner.lastRequest.MaxSeconds != 60 {
		t.Errorf("plan range = [%v, %v], want [60, 60]",
			planner.lastRequest.MinSeconds, planner.lastRequest.MaxSeconds)
	}

	if env.videos.calls != 4 {
		t.Errorf("video clip calls = %d, want 4", env.videos.calls)
	}
	if len(got.ClipURLs) != 4 {
		t.Errorf("clip count = %d, want 4", len(got.ClipURLs))
	}
	if env.images.calls != 0 {
		t.Errorf("image calls = %d, want 0 in animated strategy", env.images.calls)
	}
}

func TestVoiceoverReSynthesizesOnceAtAdjustedSpeed(t *testing.T) {
	planner := directPlanner(45, 3)
	env := newTestEnv(t, planner, []float64{50, 45})
	job := env.createJob(t, &domain.VideoJob{})

	if err := env.runner.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if env.synth.calls != 2 {
		t.Fatalf("synthesizer calls = %d, want 2", env.synth.calls)
	}
	speed := env.synth.requests[1].Speed
	want := 50.0 / 45.0
	if speed < want-0.001 || speed > want+0.001 {
		t.Errorf("re-synthesis speed = %v, want %v", speed, want)
	}
	if env.synth.requests[0].Speed != 0 {
		t.Errorf("first synthesis speed = %v, want normal rate", env.synth.requests[0].Speed)
	}

	got, _ := env.store.Get(context.Background(), job.ID)
	if got.VoiceoverDuration != 45 {
		t.Errorf("voiceover duration = %v, want 45", got.VoiceoverDuration)
	}
}

func TestVoiceoverTruncationRewritesStoredSegments(t *testing.T) {
	planner := directPlanner(45, 2)
	env := newTestEnv(t, planner, []float64{60, 44})
	job := env.createJob(t, &domain.VideoJob{})

	// Seed the record through commentary with narration far over target,
	// as if a slower voice stretched the first synthesis to 60s.
	ctx := context.Background()
	mode := domain.ContentModeDirect
	strategy := domain.RenderStrategyImages
	plan := planner.plan
	err := env.store.Update(ctx, job.ID, &repository.JobPatch{
		Transcript:     repository.Ptr("already transcribed"),
		Instructions:   &domain.JobInstructions{},
		ContentMode:    &mode,
		RenderStrategy: &strategy,
		Plan:           &plan,
		Segments: domain.SegmentContentList{
			{Index: 0, Commentary: wordsFor(100), ImagePrompt: "scene 0"},
			{Index: 1, Commentary: wordsFor(100), ImagePrompt: "scene 1"},
		},
	})
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}

	if err := env.runner.Run(ctx, job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// 60/45 is past the speed clamp, so the step must shrink the text and
	// re-synthesize once at normal rate.
	if env.synth.calls != 2 {
		t.Fatalf("synthesizer calls = %d, want 2", env.synth.calls)
	}
	if env.synth.requests[1].Speed != 0 {
		t.Errorf("re-synthesis speed = %v, want normal rate", env.synth.requests[1].Speed)
	}

	got, _ := env.store.Get(context.Background(), job.ID)
	synthesized := strings.Fields(env.synth.requests[1].Text)
	stored := strings.Fields(joinCommentary(got.Segments))
	if len(stored) != len(synthesized) {
		t.Fatalf("stored narration = %d words, synthesized = %d words", len(stored), len(synthesized))
	}
	if len(stored) >= 200 {
		t.Fatalf("stored narration = %d words, want truncated below the seeded 200", len(stored))
	}

	fitter := timing.NewFitter(2.5)
	total := 0.0
	for i, seg := range got.Segments {
		want := fitter.EstimateSpeakingDuration(seg.Commentary)
		if seg.EstimatedSeconds != want {
			t.Errorf("segment %d estimate = %v, want %v", i, seg.EstimatedSeconds, want)
		}
		total += seg.EstimatedSeconds
	}
	if total > 45 {
		t.Errorf("combined estimate = %v, want at most target 45", total)
	}
}

func TestTurboClipsNeverTouchVideoBackend(t *testing.T) {
	planner := directPlanner(45, 3)
	env := newTestEnv(t, planner, []float64{44})
	job := env.createJob(t, &domain.VideoJob{AnimatedMode: true})

	if err := env.runner.Run(context.Background(), job.ID); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got, _ := env.store.Get(context.Background(), job.ID)
	if got.RenderStrategy != domain.RenderStrategyTurbo {
		t.Fatalf("render strategy = %s, want turbo", got.RenderStrategy)
	}
	if env.videos.calls != 0 {
		t.Errorf("video generator calls = %d, want 0", env.videos.calls)
	}

	// ceil(44s voiceover / 10s max clip) intervals.
	if len(got.ClipURLs) != 5 {
		t.Fatalf("clip count = %d, want 5", len(got.ClipURLs))
	}
	for i, url := range got.ClipURLs {
		if !strings.HasPrefix(url, domain.TurboClipPrefix) {
			t.Errorf("clip[%d] = %q, want %s prefix", i, url, domain.TurboClipPrefix)
		}
	}
	if len(got.ImageURLs) != 0 {
		t.Errorf("still-image step ran in turbo strategy: %v", got.ImageURLs)
	}
}

// --- executor ---

type stubStep struct {
	name    string
	status  domain.JobStatus
	skip    bool
	runs    int
	execErr error
}

func (s *stubStep) Name() string             { return s.name }
func (s *stubStep) Status() domain.JobStatus { return s.status }
func (s *stubStep) ShouldSkip(*Context) bool { return s.skip }
func (s *stubStep) Execute(ctx context.Context, pc *Context) error {
	s.runs++
	return s.execErr
}

func TestExecuteOrderingAndCallbacks(t *testing.T) {
	a := &stubStep{name: "a", status: domain.JobStatusTranscribing}
	b := &stubStep{name: "b", status: domain.JobStatusPlanning, skip: true}
	c := &stubStep{name: "c"}

	var published []domain.JobStatus
	var completed []string
	pc := NewContext(&domain.VideoJob{ID: "j1"})
	err := Execute(context.Background(), pc, []Step{a, b, c},
		func(ctx context.Context, status domain.JobStatus, label string) error {
			published = append(published, status)
			return nil
		},
		func(ctx context.Context, step Step, pc *Context) error {
			completed = append(completed, step.Name())
			return nil
		})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if a.runs != 1 || b.runs != 0 || c.runs != 1 {
		t.Errorf("runs = a:%d b:%d c:%d, want 1/0/1", a.runs, b.runs, c.runs)
	}
	if len(published) != 1 || published[0] != domain.JobStatusTranscribing {
		t.Errorf("published = %v, want [transcribing]", published)
	}
	if len(completed) != 2 || completed[0] != "a" || completed[1] != "c" {
		t.Errorf("completed = %v, want [a c]", completed)
	}
}

func TestExecutePropagatesStepError(t *testing.T) {
	boom := errors.New("boom")
	a := &stubStep{name: "a"}
	b := &stubStep{name: "b", execErr: boom}
	c := &stubStep{name: "c"}

	err := Execute(context.Background(), NewContext(&domain.VideoJob{ID: "j1"}),
		[]Step{a, b, c}, nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	if c.runs != 0 {
		t.Error("step after failure still ran")
	}
}

func TestParseInstructions(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantSeconds float64
		wantAnim    bool
		wantStory   bool
	}{
		{
			name:        "minute duration with animation",
			text:        "make me a 1 minute animation video about discipline",
			wantSeconds: 60,
			wantAnim:    true,
		},
		{
			name:        "seconds duration",
			text:        "keep it under 30 seconds please",
			wantSeconds: 30,
		},
		{
			name:      "story request",
			text:      "tell a story about a fisherman",
			wantStory: true,
		},
		{
			name:        "spelled-out minute",
			text:        "give me a minute on focus",
			wantSeconds: 60,
		},
		{
			name: "plain note",
			text: "today I want to talk about morning routines",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseInstructions(tt.text, "")
			if got.TargetDurationSeconds != tt.wantSeconds {
				t.Errorf("target = %v, want %v", got.TargetDurationSeconds, tt.wantSeconds)
			}
			if got.AnimatedMode != tt.wantAnim {
				t.Errorf("animated = %v, want %v", got.AnimatedMode, tt.wantAnim)
			}
			if got.StoryMode != tt.wantStory {
				t.Errorf("story = %v, want %v", got.StoryMode, tt.wantStory)
			}
		})
	}
}

func TestCommentaryTruncationIsTerminalGuarantee(t *testing.T) {
	// Planner keeps returning narration far over target; after the rewrite
	// budget is spent the step must truncate locally.
	planner := directPlanner(40, 2)
	planner.segments = []domain.SegmentContent{
		{Index: 0, Commentary: wordsFor(200), ImagePrompt: "scene 0"},
		{Index: 1, Commentary: wordsFor(200), ImagePrompt: "scene 1"},
	}

	store := repository.NewMemoryJobStore()
	job := &domain.VideoJob{SourceAudioURL: "https://cdn.test/note.mp3"}
	if err := store.Create(context.Background(), job); err != nil {
		t.Fatalf("create job: %v", err)
	}

	fitter := timing.NewFitter(2.5)
	step := NewCommentaryStep(planner, fitter, store, 2)
	pc := NewContext(job)
	pc.Job.Plan = &domain.ReelPlan{TargetDurationSeconds: 40, SegmentCount: 2}

	if err := step.Execute(context.Background(), pc); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if planner.adjustCalls != 2 {
		t.Errorf("adjust calls = %d, want 2", planner.adjustCalls)
	}
	if est := estimateSegments(fitter, pc.Job.Segments); est > 40 {
		t.Errorf("estimate after truncation = %v, want <= 40", est)
	}
}

func TestManifestAlignsAssetsToTimings(t *testing.T) {
	step := NewManifestStep(config.BrandingConfig{LogoURL: "https://cdn.test/logo.png", LogoPosition: "bottom-right"})
	pc := NewContext(&domain.VideoJob{
		ID:                "j1",
		RenderStrategy:    domain.RenderStrategyImages,
		Segments:          fittingSegments(3, 45),
		VoiceoverURL:      "https://cdn.test/vo.mp3",
		VoiceoverDuration: 44,
		MusicURL:          "https://cdn.test/music.mp3",
		MusicDuration:     120,
		SubtitlesURL:      "https://cdn.test/subs.ass",
		ImageURLs:         domain.StringArray{"a.png", "b.png", "c.png"},
	})

	if err := step.Execute(context.Background(), pc); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	m := pc.Manifest
	if m.TotalDuration != 44 {
		t.Errorf("total duration = %v, want 44", m.TotalDuration)
	}
	if len(m.Segments) != 3 {
		t.Fatalf("segment count = %d, want 3", len(m.Segments))
	}
	if m.Segments[0].Start != 0 {
		t.Errorf("first segment starts at %v, want 0", m.Segments[0].Start)
	}
	if end := m.Segments[2].End; end < 43.999 || end > 44.001 {
		t.Errorf("last segment ends at %v, want 44", end)
	}
	for i := 1; i < len(m.Segments); i++ {
		if m.Segments[i].Start != m.Segments[i-1].End {
			t.Errorf("gap between segment %d and %d", i-1, i)
		}
	}
	if m.Segments[1].AssetURL != "b.png" {
		t.Errorf("segment 1 asset = %q, want b.png", m.Segments[1].AssetURL)
	}
	if m.LogoURL == "" || m.LogoPosition != "bottom-right" {
		t.Error("branding not carried into manifest")
	}
}
