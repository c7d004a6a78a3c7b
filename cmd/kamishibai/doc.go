// Command kamishibai publishes narrated story recordings from an
// S3-compatible bucket as scheduled videos.
package main
