// Package recipe assembles the corpus-processing pipeline: data
// preparation, parallel feature extraction, vocabulary training,
// manifest merging, model training, and decoding. Each phase is
// exposed as a numbered stage with a done marker so runs can resume
// where they left off.
package recipe
