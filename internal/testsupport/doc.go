// Package testsupport holds fixtures shared by package tests: temp-dir
// configurations, throwaway response caches and an in-memory Fetcher.
package testsupport
