// Package catalog models the SLIPTA question catalog: sections, weighted
// questions, and sub-questions.
//
// The catalog is the fixed frame every audit is scored against. It is loaded
// from a YAML file, validated for structural consistency (unique IDs and
// codes, positive weights, sub-questions bound to known parents), and indexed
// for constant-time lookup by question and sub-question ID.
//
// Catalogs are immutable once built. Hot reloading is supported through
// Watcher, which observes the catalog file with fsnotify and hands freshly
// loaded catalogs to a callback; consumers swap the active catalog
// atomically via a Provider.
package catalog
