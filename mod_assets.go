package pyro

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"github.com/gekko3d/pyro/firert/core"
)

type AssetId string

// AssetServer owns the CPU side of every loaded asset. Renderers pull
// textures from it by id and keep their own GPU copies.
type AssetServer struct {
	textures map[AssetId]*core.Texture
	sources  map[AssetId]string
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		textures: make(map[AssetId]*core.Texture),
		sources:  make(map[AssetId]string),
	}
}

type AssetServerModule struct{}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(NewAssetServer())
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// CreateTexture registers an in-memory image as a texture asset.
func (server *AssetServer) CreateTexture(img *image.RGBA) AssetId {
	id := makeAssetId()
	server.textures[id] = core.NewTexture(img)
	return id
}

// LoadTexture decodes a PNG file into a texture asset.
func (server *AssetServer) LoadTexture(filename string) (AssetId, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("open texture %s: %w", filename, err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode texture %s: %w", filename, err)
	}

	id := server.CreateTexture(toRGBA(img))
	server.sources[id] = filename
	return id, nil
}

// LoadTextureScaled decodes a PNG file and resamples it to the given size.
// Fire masks are sampled with bilinear filtering, so the same resampling
// kernel is used here.
func (server *AssetServer) LoadTextureScaled(filename string, width, height int) (AssetId, error) {
	id, err := server.LoadTexture(filename)
	if err != nil {
		return "", err
	}
	tex := server.textures[id]
	if tex.Width() == width && tex.Height() == height {
		return id, nil
	}

	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(scaled, scaled.Bounds(), tex.Image, tex.Image.Bounds(), xdraw.Src, nil)
	tex.Image = scaled
	return id, nil
}

// Texture returns the texture asset, or nil for an unknown id.
func (server *AssetServer) Texture(id AssetId) *core.Texture {
	return server.textures[id]
}

// TextureSource returns the file path a texture was loaded from, if any.
func (server *AssetServer) TextureSource(id AssetId) string {
	return server.sources[id]
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, img.At(x, y))
		}
	}
	return rgba
}
