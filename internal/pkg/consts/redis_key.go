package consts

const (
	RevokedTokenKey = "token:revoked:"
)

const (
	PostOrderLock      = "lock:post:order:"
	OrphanCleanJobLock = "lock:job:orphan_clean"
)
