package fsops

import (
	"context"
	"fmt"
	"os"
	"sort"

	"conduit/internal/domain"
)

const (
	ToolRead  = "read"
	ToolWrite = "write"
	ToolList  = "list"
)

// Strategy implements the filesystem identity: synchronous read, write and
// list against the local filesystem. Operation failures come back as plain
// errors; the router folds them into the result.
type Strategy struct{}

func New() *Strategy {
	return &Strategy{}
}

func (s *Strategy) Discover(_ *domain.ServerConnection) []domain.Tool {
	return []domain.Tool{
		{Name: ToolRead, Description: "Read a file and return its content"},
		{Name: ToolWrite, Description: "Create or overwrite a file with the given content"},
		{Name: ToolList, Description: "List directory entries with a file/directory discriminator"},
	}
}

func (s *Strategy) Execute(ctx context.Context, req domain.ExecutionRequest, _ *domain.ServerConnection) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch req.Tool {
	case ToolRead:
		return s.read(req.Args)
	case ToolWrite:
		return s.write(req.Args)
	case ToolList:
		return s.list(req.Args)
	default:
		return nil, fmt.Errorf("unsupported filesystem tool %q", req.Tool)
	}
}

func (s *Strategy) read(args map[string]any) (map[string]any, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied: %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return map[string]any{
		"path":    path,
		"content": string(content),
	}, nil
}

func (s *Strategy) write(args map[string]any) (map[string]any, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	content, err := stringArg(args, "content")
	if err != nil {
		return nil, err
	}

	_, statErr := os.Stat(path)
	created := os.IsNotExist(statErr)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied: %s", path)
		}
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	return map[string]any{
		"path":    path,
		"written": len(content),
		"created": created,
	}, nil
}

func (s *Strategy) list(args map[string]any) (map[string]any, error) {
	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}

	dirEntries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied: %s", path)
		}
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	entries := make([]map[string]any, 0, len(dirEntries))
	for _, entry := range dirEntries {
		kind := "file"
		if entry.IsDir() {
			kind = "directory"
		}
		entries = append(entries, map[string]any{
			"name": entry.Name(),
			"type": kind,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i]["name"].(string) < entries[j]["name"].(string)
	})

	return map[string]any{
		"path":    path,
		"entries": entries,
	}, nil
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return "", fmt.Errorf("argument %q must be a non-empty string", key)
	}
	return value, nil
}

var _ domain.Strategy = (*Strategy)(nil)
