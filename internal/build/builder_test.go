package build

import (
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cannon-dev/cannon/internal/config"
	"github.com/cannon-dev/cannon/internal/errors"
	"github.com/cannon-dev/cannon/internal/metrics"
	"github.com/cannon-dev/cannon/internal/output"
	"github.com/cannon-dev/cannon/pkg/abi"
	"github.com/cannon-dev/cannon/pkg/router"
)

func artifact(name string, functions ...string) *abi.Artifact {
	parsed := &abi.ABI{}
	for _, fn := range functions {
		parsed.Functions = append(parsed.Functions, abi.Function{Name: fn, StateMutability: abi.NonPayable})
	}
	return &abi.Artifact{ABI: parsed, Bytecode: []byte(name)}
}

func testArtifacts() router.Artifacts {
	return router.Artifacts{
		"TokenModule":   artifact("TokenModule", "mint", "burn"),
		"OwnerModule":   artifact("OwnerModule", "owner"),
		"AccountModule": artifact("AccountModule", "createAccount"),
	}
}

type recordingWriter struct {
	mu   sync.Mutex
	docs []string
	err  error
}

func (w *recordingWriter) Write(ctx context.Context, doc *router.Document) (output.Result, error) {
	if w.err != nil {
		return output.Result{}, w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.docs = append(w.docs, doc.Name)
	return output.Result{Location: "mem://" + doc.Name}, nil
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.docs)
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	rec := &recordingWriter{}
	m := metrics.New()

	var steps []string
	b := New(router.NewGenerator(testArtifacts()),
		[]Target{
			{Name: "file", Writer: output.NewFileWriter(dir)},
			{Name: "memory", Writer: rec},
		},
		Options{
			Concurrency: 2,
			Metrics:     m,
			OnProgress:  func(step string) { steps = append(steps, step) },
		},
	)

	reqs := []router.Request{
		{Name: "core router", Modules: []string{"TokenModule", "OwnerModule"}},
		{Name: "AccountRouter", Modules: []string{"AccountModule"}, Variant: "dynamic"},
	}
	result, err := b.Build(context.Background(), reqs)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	if len(result.Routers) != 2 {
		t.Fatalf("got %d routers, want 2", len(result.Routers))
	}
	if result.Routers[0].Document.Name != "CoreRouter" || result.Routers[1].Document.Name != "AccountRouter" {
		t.Errorf("routers not in request order: %s, %s", result.Routers[0].Document.Name, result.Routers[1].Document.Name)
	}
	if result.Routers[1].Document.Variant != "dynamic" {
		t.Errorf("variant override ignored: %s", result.Routers[1].Document.Variant)
	}

	for _, r := range result.Routers {
		if len(r.Outputs) != 2 {
			t.Fatalf("%s: %d outputs, want 2", r.Document.Name, len(r.Outputs))
		}
		if r.Outputs[0].Location != filepath.Join(dir, r.Document.FileName()) {
			t.Errorf("file location = %s", r.Outputs[0].Location)
		}
		if r.Outputs[1].Location != "mem://"+r.Document.Name {
			t.Errorf("memory location = %s", r.Outputs[1].Location)
		}
		data, err := os.ReadFile(r.Outputs[0].Location)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != r.Document.Source {
			t.Errorf("%s: written source differs from document", r.Document.Name)
		}
	}

	wantSteps := []string{"Generating routers...", "Writing routers..."}
	if strings.Join(steps, "|") != strings.Join(wantSteps, "|") {
		t.Errorf("steps = %v, want %v", steps, wantSteps)
	}
}

func TestBuildMetrics(t *testing.T) {
	m := metrics.New()
	b := New(router.NewGenerator(testArtifacts()), []Target{{Name: "memory", Writer: &recordingWriter{}}}, Options{Metrics: m})

	if _, err := b.Build(context.Background(), []router.Request{{Name: "CoreRouter", Modules: []string{"TokenModule"}}}); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(context.Background(), []router.Request{{Name: "CoreRouter", Modules: []string{"Missing"}}}); err == nil {
		t.Fatal("expected error")
	}

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatal(err)
	}
	got := make(map[string]bool)
	for _, f := range families {
		got[f.GetName()] = true
	}
	for _, name := range []string{
		"cannon_routers_generated_total",
		"cannon_generation_errors_total",
		"cannon_router_selectors",
		"cannon_files_written_total",
	} {
		if !got[name] {
			t.Errorf("metric %s not recorded", name)
		}
	}
}

func TestBuildFailureWritesNothing(t *testing.T) {
	rec := &recordingWriter{}
	b := New(router.NewGenerator(testArtifacts()), []Target{{Name: "memory", Writer: rec}}, Options{})

	reqs := []router.Request{
		{Name: "CoreRouter", Modules: []string{"TokenModule"}},
		{Name: "BrokenRouter", Modules: []string{"TokenModule", "Missing"}},
	}
	_, err := b.Build(context.Background(), reqs)

	var rerr *RouterError
	if !stderrors.As(err, &rerr) {
		t.Fatalf("error = %v, want *RouterError", err)
	}
	if rerr.Router != "BrokenRouter" {
		t.Errorf("Router = %s, want BrokenRouter", rerr.Router)
	}
	var ce *errors.CannonError
	if !stderrors.As(err, &ce) || ce.Code != "E100" {
		t.Errorf("error = %v, want E100", err)
	}
	if !stderrors.Is(err, router.ErrModuleNotFound) {
		t.Error("error does not match ErrModuleNotFound")
	}
	if rec.count() != 0 {
		t.Errorf("writer called %d times after a failed batch", rec.count())
	}
}

func TestBuildWriteError(t *testing.T) {
	b := New(router.NewGenerator(testArtifacts()),
		[]Target{{Name: "memory", Writer: &recordingWriter{err: errors.New("E150")}}},
		Options{},
	)

	_, err := b.Build(context.Background(), []router.Request{{Name: "CoreRouter", Modules: []string{"TokenModule"}}})
	var rerr *RouterError
	if !stderrors.As(err, &rerr) || rerr.Router != "CoreRouter" {
		t.Fatalf("error = %v, want RouterError for CoreRouter", err)
	}
}

func TestBuildDuplicateNames(t *testing.T) {
	rec := &recordingWriter{}
	b := New(router.NewGenerator(testArtifacts()), []Target{{Name: "memory", Writer: rec}}, Options{})

	_, err := b.Build(context.Background(), []router.Request{
		{Name: "CoreRouter", Modules: []string{"TokenModule"}},
		{Name: "core router", Modules: []string{"OwnerModule"}},
	})
	var rerr *RouterError
	if !stderrors.As(err, &rerr) || rerr.Router != "CoreRouter" {
		t.Fatalf("error = %v, want duplicate RouterError", err)
	}
	if rec.count() != 0 {
		t.Error("duplicate batch was written")
	}
}

func TestBuildCompile(t *testing.T) {
	t.Run("forge missing", func(t *testing.T) {
		rec := &recordingWriter{}
		b := New(router.NewGenerator(testArtifacts()), []Target{{Name: "memory", Writer: rec}}, Options{
			Compile:    true,
			ProjectDir: t.TempDir(),
			Forge:      filepath.Join(t.TempDir(), "no-such-forge"),
		})

		_, err := b.Build(context.Background(), []router.Request{{Name: "CoreRouter", Modules: []string{"TokenModule"}}})
		var ce *errors.CannonError
		if !stderrors.As(err, &ce) || ce.Code != "E140" {
			t.Fatalf("error = %v, want E140", err)
		}
		if rec.count() != 0 {
			t.Error("routers written after failed compile")
		}
	})

	t.Run("forge succeeds", func(t *testing.T) {
		truePath, err := exec.LookPath("true")
		if err != nil {
			t.Skip("true not available")
		}
		rec := &recordingWriter{}
		b := New(router.NewGenerator(testArtifacts()), []Target{{Name: "memory", Writer: rec}}, Options{
			Compile:    true,
			ProjectDir: t.TempDir(),
			Forge:      truePath,
		})

		if _, err := b.Build(context.Background(), []router.Request{{Name: "CoreRouter", Modules: []string{"TokenModule"}}}); err != nil {
			t.Fatalf("Build error: %v", err)
		}
		if rec.count() != 1 {
			t.Errorf("writer called %d times, want 1", rec.count())
		}
	})
}

func TestBuildCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := New(router.NewGenerator(testArtifacts()), []Target{{Name: "memory", Writer: &recordingWriter{}}}, Options{})
	_, err := b.Build(ctx, []router.Request{{Name: "CoreRouter", Modules: []string{"TokenModule"}}})
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestGenerate(t *testing.T) {
	b := New(router.NewGenerator(testArtifacts(), router.WithVariant("immutable")), nil, Options{})

	doc, err := b.Generate(context.Background(), router.Request{Name: "CoreRouter", Modules: []string{"OwnerModule"}})
	if err != nil {
		t.Fatal(err)
	}
	if doc.Variant != "immutable" || doc.Selectors != 1 {
		t.Errorf("doc = %s/%d", doc.Variant, doc.Selectors)
	}
}

const forgeArtifact = `{
  "abi": [{"type": "function", "name": "owner", "stateMutability": "view", "inputs": [], "outputs": [{"name": "", "type": "address"}]}],
  "bytecode": {"object": "0x6080"}
}`

func TestNewFromConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.FoundryFileName), nil, 0644); err != nil {
		t.Fatal(err)
	}
	artifactDir := filepath.Join(dir, "out", "OwnerModule.sol")
	if err := os.MkdirAll(artifactDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(artifactDir, "OwnerModule.json"), []byte(forgeArtifact), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	b, store, err := NewFromConfig(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatalf("NewFromConfig error: %v", err)
	}
	if store.Dir() != filepath.Join(dir, "out") {
		t.Errorf("store dir = %s", store.Dir())
	}
	if len(b.targets) != 1 || b.targets[0].Name != "file" {
		t.Errorf("targets = %+v", b.targets)
	}

	result, err := b.Build(context.Background(), []router.Request{{Name: "CoreRouter", Modules: []string{"OwnerModule"}}})
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	want := filepath.Join(dir, "src", "generated", "routers", "CoreRouter.g.sol")
	if result.Routers[0].Outputs[0].Location != want {
		t.Errorf("location = %s, want %s", result.Routers[0].Outputs[0].Location, want)
	}

	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "aws-config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "aws-credentials"))
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	cfg.Output.S3.Bucket = "routers"
	cfg.Output.S3.Region = "us-east-1"
	b, _, err = NewFromConfig(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(b.targets) != 2 || b.targets[1].Name != "s3" {
		t.Errorf("targets with S3 = %+v", b.targets)
	}
}

func TestBuildListsAvailableModules(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.FoundryFileName), nil, 0644); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"OwnerModule", "TokenModule"} {
		artifactDir := filepath.Join(dir, "out", name+".sol")
		if err := os.MkdirAll(artifactDir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(artifactDir, name+".json"), []byte(forgeArtifact), 0644); err != nil {
			t.Fatal(err)
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := NewFromConfig(context.Background(), cfg, Options{})
	if err != nil {
		t.Fatal(err)
	}

	_, err = b.Build(context.Background(), []router.Request{{Name: "CoreRouter", Modules: []string{"OwnerModul"}}})
	var ce *errors.CannonError
	if !stderrors.As(err, &ce) || ce.Code != "E100" {
		t.Fatalf("error = %v, want E100", err)
	}
	if !strings.HasSuffix(ce.Detail, "Available modules: OwnerModule, TokenModule") {
		t.Errorf("detail = %q", ce.Detail)
	}
}

func TestRouterError(t *testing.T) {
	inner := stderrors.New("boom")
	err := &RouterError{Router: "CoreRouter", Err: inner}
	if err.Error() != "router CoreRouter: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !stderrors.Is(err, inner) {
		t.Error("Unwrap does not expose the cause")
	}
}
