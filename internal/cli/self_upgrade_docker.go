//go:build docker

package cli

// Container images are upgraded by pulling a new tag, not in place.
func setupSelfUpgrade() {}
