// Package metadata is the read-only object graph the translator consumes: one
// Module per compiled image with its types, fields, methods and ECMA-335
// instruction streams.
//
// Images are produced by an external reader and stored as msgpack (.nmd) or
// canonical CBOR (.cbor). The same Go structs carry both encodings through
// struct tags, so a round trip through either format is lossless, including
// the raw bit patterns of floating point constants.
package metadata
