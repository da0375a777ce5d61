// Package phraselist reads learner phrase lists from CSV. Rows map to
// resolution requests; rows missing required fields are reported as invalid
// rather than aborting the batch.
package phraselist
