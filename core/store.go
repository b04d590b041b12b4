package core

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// KeyValueStore is the local cache the app keeps of last-fetched remote data.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	Keys(ctx context.Context) ([]string, error)
}

// Local store keys.
const (
	KeyStudents        = "students"
	KeySchoolData      = "schoolData"
	KeyClasses         = "classes"
	KeyAttendanceDraft = "attendanceDraft"
)

var (
	localDataKeys      = []string{KeyStudents, KeySchoolData, KeyClasses, KeyAttendanceDraft}
	localDataFragments = []string{"student", "siswa", "data"}
)

// ClearLocalData removes the known cache keys and every key mentioning students or data.
// It returns the removed keys.
func ClearLocalData(ctx context.Context, store KeyValueStore) ([]string, error) {
	keys, err := store.Keys(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing local keys")
	}

	toDelete := make(map[string]struct{}, len(localDataKeys))
	for _, k := range localDataKeys {
		toDelete[k] = struct{}{}
	}
	for _, k := range keys {
		lk := strings.ToLower(k)
		for _, frag := range localDataFragments {
			if strings.Contains(lk, frag) {
				toDelete[k] = struct{}{}
				break
			}
		}
	}

	removed := make([]string, 0, len(toDelete))
	for k := range toDelete {
		removed = append(removed, k)
	}
	sort.Strings(removed)
	if err := store.Delete(ctx, removed...); err != nil {
		return nil, errors.Wrap(err, "deleting local keys")
	}
	return removed, nil
}
