// Package analyzer turns the source model into symbol, definition,
// reference and hover results.
//
// Language specifics live in Adapter implementations, one per language
// family, selected by the Dispatcher. The Engine is the entry point; it
// holds the model's read lock for the duration of each call and converts
// internal failures into empty results. The only error it returns is an
// *errors.UnsupportedLanguageError for files no adapter can serve.
package analyzer
