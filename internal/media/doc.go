// Package media loads source recordings into immutable PCM sample buffers
// and writes clip output.
//
// WAV files decode in-process; other formats go through ffmpeg as the
// external decode collaborator. Decoded recordings are shared read-only
// across concurrent extractions within a batch group.
package media
