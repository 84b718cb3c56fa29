package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/calder-labs/askdoc-cli/internal/core/domain"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driven"
	"github.com/calder-labs/askdoc-cli/internal/core/ports/driving"
)

// execute runs the root command with args and captures its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// setupTestServices wires stub services and returns a restore function.
func setupTestServices() func() {
	old := Services{
		Chat:     chatService,
		RAG:      ragService,
		Groups:   groupStore,
		Runtime:  runtime,
		Files:    fileService,
		Threads:  threadService,
		Settings: settingsStore,
	}

	SetServices(Services{
		Chat:     &fakeChat{},
		RAG:      &fakeRAG{},
		Groups:   newFakeGroups(),
		Settings: newFakeSettings(),
	})

	return func() { SetServices(old) }
}

type fakeChat struct {
	lastOpts driving.AskOptions
}

func (f *fakeChat) Ask(_ context.Context, question string, opts driving.AskOptions) (*domain.Answer, error) {
	f.lastOpts = opts
	answer := &domain.Answer{ID: "a1", Question: question, Content: "Stub answer."}
	if opts.Group != "" {
		answer.Context = &domain.Retrieval{Group: opts.Group, FileID: "f1", Part: 0, Similarity: 0.5}
	}
	return answer, nil
}

func (f *fakeChat) AskAsync(_ context.Context, _ string, opts driving.AskOptions) (string, error) {
	f.lastOpts = opts
	return "async-1", nil
}

type fakeRAG struct {
	lastPath  string
	lastGroup string
}

func (f *fakeRAG) Ingest(_ context.Context, path, group string) (*driving.IngestResult, error) {
	f.lastPath, f.lastGroup = path, group
	return &driving.IngestResult{FileID: "f1", Group: group, Chunks: 4, PartSize: 1024}, nil
}

func (f *fakeRAG) Retrieve(_ context.Context, _, _ string) (*domain.Retrieval, bool, error) {
	return nil, false, nil
}

type fakeGroups struct {
	groups map[string]domain.Group
}

func newFakeGroups() *fakeGroups {
	g := domain.NewGroup("notes", 512)
	g = g.Append(domain.EmbeddingRecord{FileID: "f1", Part: 0, Embedding: []float32{1}})
	return &fakeGroups{groups: map[string]domain.Group{"notes": g}}
}

func (f *fakeGroups) Load(_ context.Context, name string) (domain.Group, error) {
	g, ok := f.groups[name]
	if !ok {
		return domain.Group{}, fmt.Errorf("group %q: %w", name, domain.ErrGroupNotFound)
	}
	return g, nil
}

func (f *fakeGroups) Save(_ context.Context, g domain.Group) error {
	f.groups[g.Name] = g
	return nil
}

func (f *fakeGroups) List(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(f.groups))
	for name := range f.groups {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeGroups) Delete(_ context.Context, name string) error {
	delete(f.groups, name)
	return nil
}

func (f *fakeGroups) Close() error { return nil }

type fakeSettings struct {
	settings domain.Settings
	saved    bool
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{settings: domain.DefaultSettings()}
}

func (f *fakeSettings) Load() (domain.Settings, error) { return f.settings, nil }

func (f *fakeSettings) Save(s domain.Settings) error {
	f.settings = s
	f.saved = true
	return nil
}

func (f *fakeSettings) Watch(_ func(domain.Settings)) (func(), error) {
	return func() {}, nil
}

func (f *fakeSettings) Path() string { return "/tmp/config.toml" }

var _ driven.SettingsStore = (*fakeSettings)(nil)
