package config

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/fuzzor/internal/yml"
	"github.com/viant/fuzzor/model"
	"github.com/viant/fuzzor/policy"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Service loads fuzz target configuration documents.
type Service struct {
	fs     afs.Service
	logger *zap.SugaredLogger
}

// Option customizes the loader service.
type Option func(s *Service)

// WithFS sets the file service used to read the document.
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithLogger sets the logger used for validation warnings.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a new loader service.
func New(options ...Option) *Service {
	ret := &Service{}
	for _, opt := range options {
		opt(ret)
	}
	if ret.fs == nil {
		ret.fs = afs.New()
	}
	if ret.logger == nil {
		ret.logger = zap.NewNop().Sugar()
	}
	return ret
}

// Load reads the document at URL and returns the enabled, validated targets.
// It is a pure transform of the document into the target model: no build or
// run side effect happens before every entry has been checked.
func (s *Service) Load(ctx context.Context, URL string) ([]*model.Target, error) {
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check config %s: %w", URL, err)
	}
	if !exists {
		return nil, fmt.Errorf("config file not found: %s", URL)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", URL, err)
	}
	return s.parse(ctx, URL, data)
}

func (s *Service) parse(ctx context.Context, URL string, data []byte) ([]*model.Target, error) {
	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("malformed config %s: %w", URL, err)
	}
	root := yml.Root(&document)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("malformed config %s: root should be a mapping", URL)
	}
	targetsNode := root.Lookup("targets")
	if targetsNode == nil || targetsNode.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("malformed config %s: missing targets sequence", URL)
	}

	var targets []*model.Target
	var invalid []*EntryError
	_ = targetsNode.Items(func(index int, node *yml.Node) error {
		target, err := model.ParseTarget(node)
		if err != nil {
			invalid = append(invalid, &EntryError{Position: index + 1, Name: node.Lookup("name").Text(), Err: err})
			return nil
		}
		if err := target.Validate(ctx, s.fs, s.logger); err != nil {
			invalid = append(invalid, &EntryError{Position: index + 1, Name: target.Name, Err: err})
			return nil
		}
		targets = append(targets, target)
		return nil
	})
	if len(invalid) > 0 {
		return nil, &InvalidEntriesError{Entries: invalid}
	}

	enabled := make([]*model.Target, 0, len(targets))
	for _, target := range targets {
		if !target.Enabled {
			continue
		}
		enabled = append(enabled, target)
	}
	if len(enabled) == 0 {
		return nil, fmt.Errorf("no enabled targets found in %s", URL)
	}
	if duplicates := duplicateNames(enabled); len(duplicates) > 0 {
		return nil, &DuplicateNamesError{Names: duplicates}
	}

	selected := s.applyPolicy(ctx, enabled)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no targets selected by policy in %s", URL)
	}
	return selected, nil
}

// applyPolicy drops targets excluded by the selection policy carried in ctx,
// logging each skip.
func (s *Service) applyPolicy(ctx context.Context, targets []*model.Target) []*model.Target {
	aPolicy := policy.FromContext(ctx)
	if aPolicy == nil {
		return targets
	}
	selected := make([]*model.Target, 0, len(targets))
	for _, target := range targets {
		if !aPolicy.IsAllowed(target.Name) {
			s.logger.Infof("target %s skipped by selection policy", target.Name)
			continue
		}
		selected = append(selected, target)
	}
	return selected
}

// duplicateNames returns every name shared by two or more targets, in first
// occurrence order.
func duplicateNames(targets []*model.Target) []string {
	counts := make(map[string]int, len(targets))
	for _, target := range targets {
		counts[target.Name]++
	}
	var duplicates []string
	seen := make(map[string]bool)
	for _, target := range targets {
		if counts[target.Name] > 1 && !seen[target.Name] {
			duplicates = append(duplicates, target.Name)
			seen[target.Name] = true
		}
	}
	return duplicates
}
