// Package storage resolves caller-supplied invoice filenames against the keys
// actually present in the object store and stages the matched object on local
// scratch space for the upload step.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrObjectNotFound indicates that no stored key matched the requested name on
// any tier, or that a download target vanished between resolution and fetch.
var ErrObjectNotFound = errors.New("object not found in store")

// TransferError wraps any download fault that is not a missing object, so
// callers can distinguish "not there" from "could not be fetched".
type TransferError struct {
	Key string
	Err error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer failed for %q: %v", e.Key, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// ObjectStore is the narrow object-storage capability the resolver consumes.
type ObjectStore interface {
	// Head probes a single key for existence. A missing key is reported as
	// ErrObjectNotFound; any other fault is returned as-is.
	Head(ctx context.Context, key string) error
	// List enumerates every key in the bucket, paginating internally, and
	// invokes fn for each. Returning false from fn stops the enumeration.
	List(ctx context.Context, fn func(key string) bool) error
	// Download writes the object at key to dst. A missing object is reported
	// as ErrObjectNotFound.
	Download(ctx context.Context, key string, dst string) error
}

// Artifact is a resolved and locally staged object. The scratch file lives
// only for the duration of one workflow run.
type Artifact struct {
	RequestedName string
	Key           string
	LocalPath     string
}

// Cleanup removes the scratch file. It is safe to call on every exit path,
// including after a failed upload or when the file was never written.
func (a *Artifact) Cleanup() {
	if a == nil || a.LocalPath == "" {
		return
	}
	_ = os.Remove(a.LocalPath)
}

// Resolver maps requested filenames onto stored keys using a tiered matching
// strategy, weakest tier last.
type Resolver struct {
	store  ObjectStore
	logger *zap.Logger
}

// NewResolver builds a Resolver over the given store.
func NewResolver(store ObjectStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logger.Named("storage"),
	}
}

// Resolve maps name to a concrete stored key. Tiers, first hit wins:
//
//  1. exact key equality (existence probe, no enumeration)
//  2. stored key whose suffix equals name (short-circuits the enumeration)
//  3. case-insensitive basename equality
//  4. case-insensitive substring containment
//
// Tiers 3 and 4 accumulate at most their first-seen candidate during a single
// enumeration pass and are only consulted once the pass completes, so a
// suffix hit appearing late still supersedes an earlier substring hit.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, error) {
	if err := r.store.Head(ctx, name); err == nil {
		r.logger.Debug("Resolved key by exact match.", zap.String("key", name))
		return name, nil
	} else if !errors.Is(err, ErrObjectNotFound) {
		return "", fmt.Errorf("existence probe for %q: %w", name, err)
	}

	wantBase := strings.ToLower(path.Base(name))
	wantSub := strings.ToLower(name)

	var suffixHit, baseHit, subHit string
	err := r.store.List(ctx, func(key string) bool {
		if strings.HasSuffix(key, name) {
			suffixHit = key
			return false
		}
		if baseHit == "" && strings.ToLower(path.Base(key)) == wantBase {
			baseHit = key
		}
		if subHit == "" && strings.Contains(strings.ToLower(key), wantSub) {
			subHit = key
		}
		return true
	})
	if err != nil {
		return "", fmt.Errorf("enumerating keys for %q: %w", name, err)
	}

	for _, hit := range []string{suffixHit, baseHit, subHit} {
		if hit != "" {
			r.logger.Debug("Resolved key by fuzzy match.",
				zap.String("requested", name), zap.String("key", hit))
			return hit, nil
		}
	}
	return "", fmt.Errorf("no key matched %q: %w", name, ErrObjectNotFound)
}

// Fetch resolves name and downloads the matched object under dir, named after
// the resolved key's basename. The download goes through a temporary file and
// a rename, so a failed transfer never leaves a partial file at the returned
// path. On failure nothing is staged and the caller has nothing to clean up.
func (r *Resolver) Fetch(ctx context.Context, name string, dir string) (*Artifact, error) {
	key, err := r.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	dst := filepath.Join(dir, path.Base(key))
	tmp := dst + ".part"
	if err := r.store.Download(ctx, key, tmp); err != nil {
		_ = os.Remove(tmp)
		if errors.Is(err, ErrObjectNotFound) {
			return nil, fmt.Errorf("object %q vanished before download: %w", key, err)
		}
		return nil, &TransferError{Key: key, Err: err}
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return nil, &TransferError{Key: key, Err: err}
	}

	r.logger.Info("Staged artifact on scratch space.",
		zap.String("key", key), zap.String("path", dst))

	return &Artifact{RequestedName: name, Key: key, LocalPath: dst}, nil
}
