package common

import (
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

func IsTestEnv() bool {
	return testing.Testing()
}

func IsDevelopment() bool {
	return os.Getenv(EnvKeyGoEnv) == "development"
}

func IsProduction() bool {
	return os.Getenv(EnvKeyGoEnv) == "production"
}

// EnvOr returns the trimmed value of key, or fallback when unset or blank.
func EnvOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// EnvDuration parses key as a time.Duration ("3s", "15m"). Unset means fallback.
func EnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return time.ParseDuration(v)
}

// EnvBool treats "1", "true", "yes" (any case) as true.
func EnvBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v == "yes"
}

func Mapper[T any, R any](items []T, mapFn func(T) R) []R {
	mapped := make([]R, len(items))
	for i := range len(items) {
		mapped[i] = mapFn(items[i])
	}
	return mapped
}

func Reducer[T any, R any](items []T, reduceFn func(R, T) R, initAcc R) R {
	finalAcc := initAcc
	for i := range len(items) {
		finalAcc = reduceFn(finalAcc, items[i])
	}
	return finalAcc
}

func Filter[T any](items []T, keep func(T) bool) []T {
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			kept = append(kept, item)
		}
	}
	return kept
}

// StringSet builds a lookup set, skipping empty strings.
func StringSet(items []string) map[string]bool {
	return Reducer(items, func(m map[string]bool, s string) map[string]bool {
		if s != "" {
			m[s] = true
		}
		return m
	}, map[string]bool{})
}
