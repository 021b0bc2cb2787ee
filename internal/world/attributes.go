package world

import "mech-arena/server/internal/grid"

// StationKind enumerates the operable station archetypes found inside
// containers.
type StationKind string

const (
	StationWeaponLaser      StationKind = "weapon-laser"
	StationWeaponProjectile StationKind = "weapon-projectile"
	StationEngine           StationKind = "engine"
	StationShield           StationKind = "shield"
	StationRepair           StationKind = "repair"
	StationElectrical       StationKind = "electrical"
	StationUpgrade          StationKind = "upgrade"
	StationPilot            StationKind = "pilot"
)

// Station marks an entity as an operable control station.
type Station struct {
	Kind          StationKind `json:"kind"`
	InteractRange float64     `json:"interactRange"`
	PowerRequired float64     `json:"powerRequired"`
	Operating     bool        `json:"operating"`
}

// Turret marks an entity as an automated weapon emplacement.
type Turret struct {
	Facing        grid.Direction `json:"facing"`
	Damage        float64        `json:"damage"`
	Range         float64        `json:"range"`
	CooldownTicks int            `json:"cooldownTicks"`
}

// Solid controls whether an entity blocks movement or projectiles.
type Solid struct {
	BlocksMovement    bool `json:"blocksMovement"`
	BlocksProjectiles bool `json:"blocksProjectiles"`
}

// Opaque controls how an entity participates in vision attenuation.
type Opaque struct {
	Attenuation      float64 `json:"attenuation"`
	BlocksCompletely bool    `json:"blocksCompletely"`
}

// Attributes is the set of named component records carried by one entity.
// Nil members mean the entity does not have that aspect.
type Attributes struct {
	Name    string   `json:"name,omitempty"`
	Station *Station `json:"station,omitempty"`
	Turret  *Turret  `json:"turret,omitempty"`
	Solid   *Solid   `json:"solid,omitempty"`
	Opaque  *Opaque  `json:"opaque,omitempty"`
}

// StationAttributes assembles the conventional attribute set for a solid,
// operable station.
func StationAttributes(name string, kind StationKind) Attributes {
	return Attributes{
		Name:    name,
		Station: &Station{Kind: kind, InteractRange: 1.5 * grid.TileSize, PowerRequired: 50},
		Solid:   &Solid{BlocksMovement: true},
	}
}

// TurretAttributes assembles the conventional attribute set for a turret.
func TurretAttributes(name string, facing grid.Direction) Attributes {
	return Attributes{
		Name:   name,
		Turret: &Turret{Facing: facing, Damage: 10, Range: 12 * grid.TileSize, CooldownTicks: 30},
		Solid:  &Solid{BlocksMovement: true, BlocksProjectiles: true},
		Opaque: &Opaque{Attenuation: 0.4},
	}
}
