package integration

import (
	"sync"

	"github.com/jmespath/go-jmespath"
)

// PathEvaluator evaluates dot/bracket paths into record payloads. Compiled
// expressions are cached per path.
type PathEvaluator struct {
	cache map[string]*jmespath.JMESPath
	mu    sync.RWMutex
}

// NewPathEvaluator creates a new path evaluator
func NewPathEvaluator() *PathEvaluator {
	return &PathEvaluator{
		cache: make(map[string]*jmespath.JMESPath),
	}
}

// Lookup evaluates path against data. Paths that do not compile, do not
// match, or fail to evaluate report false.
func (e *PathEvaluator) Lookup(path string, data any) (any, bool) {
	if path == "" || data == nil {
		return nil, false
	}
	compiled, err := e.getOrCompile(path)
	if err != nil {
		return nil, false
	}
	result, err := compiled.Search(data)
	if err != nil || result == nil {
		return nil, false
	}
	return result, true
}

// Validate checks that path compiles
func (e *PathEvaluator) Validate(path string) error {
	_, err := e.getOrCompile(path)
	return err
}

func (e *PathEvaluator) getOrCompile(path string) (*jmespath.JMESPath, error) {
	e.mu.RLock()
	if compiled, ok := e.cache[path]; ok {
		e.mu.RUnlock()
		return compiled, nil
	}
	e.mu.RUnlock()

	compiled, err := jmespath.Compile(path)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[path] = compiled
	e.mu.Unlock()

	return compiled, nil
}

// ClearCache clears the compiled expression cache
func (e *PathEvaluator) ClearCache() {
	e.mu.Lock()
	e.cache = make(map[string]*jmespath.JMESPath)
	e.mu.Unlock()
}
