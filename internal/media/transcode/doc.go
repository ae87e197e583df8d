// Package transcode runs ffmpeg to apply a compiled patch filter graph and
// re-encode audio into the game's format.
package transcode
