// Package pipeline sequences the full acquisition run for one arc folder:
// download episodes, fetch subtitles, wait for the downloads, match
// subtitles to videos and verify the result.
//
// Each step first checks whether its output already exists in the target
// folder and skips itself if so, which makes re-running an interrupted
// pipeline safe. The episode and subtitle steps are independent and run
// concurrently; a hard failure in either cancels the other and halts the
// run. Matching shortfalls are soft: they are reported and verification
// still runs. The run holds an exclusive lock file in the target folder.
package pipeline
