package service

// applyOptimistic applies a local mutation immediately, attempts the remote
// persistence call, and undoes the local mutation via revert when the
// remote call fails. The persistence error is returned untouched so the
// caller can surface it. Every optimistic operation shares this wrapper
// instead of duplicating the revert logic per call site.
func applyOptimistic(apply func(), persist func() error, revert func()) error {
	apply()
	if err := persist(); err != nil {
		revert()
		return err
	}
	return nil
}
