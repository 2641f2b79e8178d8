package pyro

import (
	"github.com/gekko3d/pyro/firert/core"
)

// GenerateFireMask registers a procedural flame profile texture with the
// server. The generator itself lives in firert/core so GPU-free tools can
// build masks without pulling in the windowing hosts.
func (server *AssetServer) GenerateFireMask(width, height int, seed int64) AssetId {
	return server.CreateTexture(core.GenerateFireMask(width, height, seed).Image)
}
