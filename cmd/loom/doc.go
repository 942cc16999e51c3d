// Command loom drives the corpus-processing pipeline: data
// preparation, feature extraction, vocabulary training, manifest
// merging, training, and decoding, with resumable stage ranges and a
// persistent run ledger.
package main
