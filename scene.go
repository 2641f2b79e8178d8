package pyro

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/pyro/firert/core"
)

// SceneDef defines the initial state of a scene.
type SceneDef struct {
	Fires  []FireDef  `json:"fires"`
	Lights []LightDef `json:"lights,omitempty"`
	Embers []EmberDef `json:"embers,omitempty"`
	Camera *CameraDef `json:"camera,omitempty"`
}

// FireDef defines one fire volume instantiation. A named preset applies
// first; explicit fields override it.
type FireDef struct {
	Position mgl32.Vec3 `json:"position"`
	Rotation mgl32.Quat `json:"rotation,omitempty"`
	Scale    mgl32.Vec3 `json:"scale"`

	Preset string `json:"preset,omitempty"`

	Tint       string      `json:"tint,omitempty"` // "#ff9933", "0xff9933" or "rgb(255,153,51)"
	Magnitude  *float32    `json:"magnitude,omitempty"`
	Lacunarity *float32    `json:"lacunarity,omitempty"`
	Gain       *float32    `json:"gain,omitempty"`
	NoiseScale *[4]float32 `json:"noise_scale,omitempty"`
	Iterations *int        `json:"iterations,omitempty"`
	Octaves    *int        `json:"octaves,omitempty"`
	Seed       *float32    `json:"seed,omitempty"`

	// Mask texture: a PNG path, or a generated mask when the path is empty.
	MaskPath string `json:"mask_path,omitempty"`
	MaskSize int    `json:"mask_size,omitempty"`
	MaskSeed int64  `json:"mask_seed,omitempty"`

	Light *FireLightDef `json:"light,omitempty"`
}

// FireLightDef attaches a flickering point light to a fire.
type FireLightDef struct {
	Color         [3]float32 `json:"color"`
	BaseIntensity float32    `json:"base_intensity"`
	FlickerAmount float32    `json:"flicker_amount"`
	FlickerSpeed  float32    `json:"flicker_speed,omitempty"`
	Range         float32    `json:"range,omitempty"`
}

// LightDef defines a standalone light instantiation.
type LightDef struct {
	Type      LightType  `json:"type"`
	Position  mgl32.Vec3 `json:"position"`
	Color     [3]float32 `json:"color"`
	Intensity float32    `json:"intensity"`
	Range     float32    `json:"range,omitempty"`
}

// EmberDef defines an ember emitter. With AttachToFire set, the emitter is
// parented to the fire at that index in Fires and Position becomes an offset
// in the fire's local space.
type EmberDef struct {
	Position     mgl32.Vec3            `json:"position"`
	Rotation     mgl32.Quat            `json:"rotation,omitempty"`
	Emitter      EmberEmitterComponent `json:"emitter"`
	AttachToFire *int                  `json:"attach_to_fire,omitempty"`
}

// CameraDef defines the scene camera, optionally orbiting.
type CameraDef struct {
	Position    mgl32.Vec3 `json:"position"`
	LookAt      mgl32.Vec3 `json:"look_at"`
	FovYDegrees float32    `json:"fov_y_degrees,omitempty"`
	Orbit       *OrbitDef  `json:"orbit,omitempty"`
}

type OrbitDef struct {
	Target mgl32.Vec3 `json:"target"`
	Radius float32    `json:"radius"`
	Height float32    `json:"height"`
	Speed  float32    `json:"speed"`
}

// LoadScene iterates through the SceneDef and spawns entities. Every fire is
// built on the given backend.
func LoadScene(cmd *Commands, assets *AssetServer, backend core.VolumeShaderBackend, scene *SceneDef) error {
	fireIds := make([]EntityId, 0, len(scene.Fires))
	for i, fire := range scene.Fires {
		eid, err := spawnFire(cmd, assets, backend, fire)
		if err != nil {
			return fmt.Errorf("fire %d: %w", i, err)
		}
		fireIds = append(fireIds, eid)
	}

	for _, light := range scene.Lights {
		spawnLight(cmd, light)
	}

	for i, ember := range scene.Embers {
		if err := spawnEmberEmitter(cmd, ember, fireIds); err != nil {
			return fmt.Errorf("ember %d: %w", i, err)
		}
	}

	if scene.Camera != nil {
		spawnCamera(cmd, *scene.Camera)
	}
	return nil
}

func spawnFire(cmd *Commands, assets *AssetServer, backend core.VolumeShaderBackend, def FireDef) (EntityId, error) {
	var maskId AssetId
	if def.MaskPath != "" {
		id, err := assets.LoadTexture(def.MaskPath)
		if err != nil {
			return 0, err
		}
		maskId = id
	} else {
		size := def.MaskSize
		if size == 0 {
			size = 128
		}
		maskId = assets.GenerateFireMask(size, size, def.MaskSeed)
	}

	var opts []core.Option
	if def.Preset != "" {
		preset, ok := core.PresetByName(def.Preset)
		if !ok {
			return 0, fmt.Errorf("unknown fire preset %q", def.Preset)
		}
		opts = append(opts, preset.Options...)
	}
	if def.Tint != "" {
		tint, err := core.ParseColor(def.Tint)
		if err != nil {
			return 0, fmt.Errorf("tint: %w", err)
		}
		opts = append(opts, core.WithTint(tint))
	}
	if def.Magnitude != nil {
		opts = append(opts, core.WithMagnitude(*def.Magnitude))
	}
	if def.Lacunarity != nil {
		opts = append(opts, core.WithLacunarity(*def.Lacunarity))
	}
	if def.Gain != nil {
		opts = append(opts, core.WithGain(*def.Gain))
	}
	if def.NoiseScale != nil {
		s := *def.NoiseScale
		opts = append(opts, core.WithNoiseScale(mgl32.Vec4{s[0], s[1], s[2], s[3]}))
	}
	if def.Iterations != nil {
		opts = append(opts, core.WithIterations(*def.Iterations))
	}
	if def.Octaves != nil {
		opts = append(opts, core.WithOctaves(*def.Octaves))
	}
	if def.Seed != nil {
		opts = append(opts, core.WithSeed(*def.Seed))
	}

	volume, err := core.NewVolume(backend, nil, assets.Texture(maskId), opts...)
	if err != nil {
		return 0, err
	}

	comps := []any{
		&TransformComponent{
			Position: def.Position,
			Rotation: orIdent(def.Rotation),
			Scale:    orUnit(def.Scale),
		},
		&FireComponent{Volume: volume},
	}
	if def.Light != nil {
		comps = append(comps,
			&LightComponent{
				Type:      LightTypePoint,
				Color:     def.Light.Color,
				Intensity: def.Light.BaseIntensity,
				Range:     def.Light.Range,
			},
			&FireLightComponent{
				BaseIntensity: def.Light.BaseIntensity,
				FlickerAmount: def.Light.FlickerAmount,
				FlickerSpeed:  def.Light.FlickerSpeed,
				Seed:          def.Position.X() + def.Position.Z(),
			},
		)
	}
	return cmd.AddEntity(comps...), nil
}

func spawnLight(cmd *Commands, def LightDef) {
	cmd.AddEntity(
		&TransformComponent{
			Position: def.Position,
			Rotation: mgl32.QuatIdent(),
			Scale:    mgl32.Vec3{1, 1, 1},
		},
		&LightComponent{
			Type:      def.Type,
			Color:     def.Color,
			Intensity: def.Intensity,
			Range:     def.Range,
		},
	)
}

func spawnEmberEmitter(cmd *Commands, def EmberDef, fires []EntityId) error {
	emitter := def.Emitter
	comps := []any{
		&TransformComponent{
			Position: def.Position,
			Rotation: orIdent(def.Rotation),
			Scale:    mgl32.Vec3{1, 1, 1},
		},
		&emitter,
	}
	if def.AttachToFire != nil {
		idx := *def.AttachToFire
		if idx < 0 || idx >= len(fires) {
			return fmt.Errorf("attach_to_fire index %d out of range", idx)
		}
		comps = append(comps,
			&ParentComponent{Entity: fires[idx]},
			&LocalTransformComponent{
				Position: def.Position,
				Rotation: orIdent(def.Rotation),
				Scale:    mgl32.Vec3{1, 1, 1},
			},
		)
	}
	cmd.AddEntity(comps...)
	return nil
}

func spawnCamera(cmd *Commands, def CameraDef) {
	comps := []any{
		&CameraComponent{
			Position:    def.Position,
			LookAt:      def.LookAt,
			Up:          mgl32.Vec3{0, 1, 0},
			FovYDegrees: def.FovYDegrees,
		},
	}
	if def.Orbit != nil {
		comps = append(comps, &OrbitCameraComponent{
			Target: def.Orbit.Target,
			Radius: def.Orbit.Radius,
			Height: def.Orbit.Height,
			Speed:  def.Orbit.Speed,
		})
	}
	cmd.AddEntity(comps...)
}

// A zero-valued quaternion from an omitted JSON field is not a rotation;
// treat it as identity.
func orIdent(q mgl32.Quat) mgl32.Quat {
	if q.W == 0 && q.V.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return q
}

func orUnit(v mgl32.Vec3) mgl32.Vec3 {
	if v.Len() == 0 {
		return mgl32.Vec3{1, 1, 1}
	}
	return v
}

func intPtr(v int) *int { return &v }

// SaveSceneDef writes a scene definition as indented JSON.
func SaveSceneDef(scene *SceneDef, filename string) error {
	bytes, err := json.MarshalIndent(scene, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, bytes, 0644)
}

// LoadSceneDef reads a scene definition written by SaveSceneDef.
func LoadSceneDef(filename string) (*SceneDef, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var scene SceneDef
	if err := json.Unmarshal(bytes, &scene); err != nil {
		return nil, err
	}
	return &scene, nil
}

// DefaultFireScene is the out-of-the-box campfire: one preset flame with a
// flickering light, an ember column, dim ambient dusk and a slow orbit camera.
func DefaultFireScene() *SceneDef {
	return &SceneDef{
		Fires: []FireDef{
			{
				Position: mgl32.Vec3{0, 1.5, 0},
				Scale:    mgl32.Vec3{1.5, 3, 1.5},
				Preset:   "campfire",
				MaskSeed: 7,
				Light: &FireLightDef{
					Color:         [3]float32{1.0, 0.6, 0.25},
					BaseIntensity: 1.2,
					FlickerAmount: 0.35,
					FlickerSpeed:  4.0,
					Range:         8,
				},
			},
		},
		Lights: []LightDef{
			{
				Type:      LightTypeAmbient,
				Color:     [3]float32{0.25, 0.2, 0.35},
				Intensity: 0.12,
			},
		},
		Embers: []EmberDef{
			{
				// Rides the campfire near its base.
				AttachToFire: intPtr(0),
				Position:     mgl32.Vec3{0, -0.35, 0},
				Emitter: EmberEmitterComponent{
					Enabled:          true,
					MaxEmbers:        192,
					SpawnRate:        24,
					SpawnRadius:      0.35,
					LifetimeRange:    [2]float32{1.2, 2.8},
					SpeedRange:       [2]float32{0.6, 1.4},
					SizeRange:        [2]float32{0.02, 0.05},
					BaseColor:        [4]float32{1.0, 0.75, 0.3, 1.0},
					TipColor:         [4]float32{0.8, 0.2, 0.05, 0.0},
					Buoyancy:         0.8,
					Drag:             0.5,
					ConeAngleDegrees: 18,
				},
			},
		},
		Camera: &CameraDef{
			Position:    mgl32.Vec3{4, 2.5, 4},
			LookAt:      mgl32.Vec3{0, 1.2, 0},
			FovYDegrees: 55,
			Orbit: &OrbitDef{
				Target: mgl32.Vec3{0, 1.2, 0},
				Radius: 4.5,
				Height: 2.5,
				Speed:  0.25,
			},
		},
	}
}
