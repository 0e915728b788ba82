package main

import "math"

// Arena geometry. The map is a fixed tile grid; row index is the map Y axis,
// which becomes world Z. World origin sits at the map centre.
const (
	TileSize = 2.0
	MapW     = 16
	MapH     = 16
)

var arenaMap = [MapH]string{
	"################",
	"#..............#",
	"#..####........#",
	"#..............#",
	"#......####....#",
	"#..............#",
	"#...#..........#",
	"#...#.....######",
	"#...#..........#",
	"#..............#",
	"#......#.......#",
	"#......#.......#",
	"#..............#",
	"#..............#",
	"#..............#",
	"################",
}

// MapPoint is a position in map (tile) coordinates
type MapPoint struct {
	X, Y float64
}

// Level describes one stage of the run
type Level struct {
	Spawn    MapPoint
	Portal   MapPoint
	CatCount int
}

// catsPerLevel is the shared-room cat count; every level seeds the same pack.
const catsPerLevel = 5

// Levels is the ordered level table; the room never advances past the last one.
var Levels = []Level{
	{Spawn: MapPoint{2.2, 2.2}, Portal: MapPoint{13.5, 13.5}, CatCount: catsPerLevel},
	{Spawn: MapPoint{2.2, 13.2}, Portal: MapPoint{13.5, 2.5}, CatCount: catsPerLevel},
	{Spawn: MapPoint{13.2, 2.2}, Portal: MapPoint{2.5, 13.5}, CatCount: catsPerLevel},
	{Spawn: MapPoint{2.6, 8.0}, Portal: MapPoint{13.5, 8.5}, CatCount: catsPerLevel},
	{Spawn: MapPoint{2.4, 8.0}, Portal: MapPoint{13.5, 8.5}, CatCount: catsPerLevel},
	{Spawn: MapPoint{10.8, 9.4}, Portal: MapPoint{2.5, 8.5}, CatCount: catsPerLevel},
	{Spawn: MapPoint{8.0, 13.2}, Portal: MapPoint{8.0, 2.4}, CatCount: catsPerLevel},
}

// CatSpawnPoints are cycled when seeding cats
var CatSpawnPoints = []MapPoint{
	{2.6, 2.6}, {13.2, 2.8}, {13.4, 13.2}, {2.8, 13.4},
	{8.0, 2.2}, {13.6, 8.4}, {8.0, 13.8}, {2.2, 8.0},
}

// PickupPoints are the fixed pickup waypoints
var PickupPoints = []MapPoint{
	{3.2, 3.2}, {6.8, 3.4}, {10.8, 3.6}, {13.0, 6.0},
	{12.6, 10.6}, {9.2, 12.6}, {5.0, 12.8}, {3.4, 10.6},
	{2.8, 7.6}, {6.2, 8.2}, {9.8, 8.0}, {12.2, 7.8},
}

// Vec3 is a world-space position
type Vec3 struct {
	X, Y, Z float64
}

// LastLevel is the index of the final level
func LastLevel() int {
	return len(Levels) - 1
}

// ClampLevel coerces a requested starting level into the level table
func ClampLevel(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(Clamp(math.Floor(v), 0, float64(LastLevel())))
}

// LevelAt returns the level config, falling back to the first level
func LevelAt(i int) Level {
	if i < 0 || i >= len(Levels) {
		return Levels[0]
	}
	return Levels[i]
}

// MapToWorld converts map coordinates to world space at height y
func MapToWorld(p MapPoint, y float64) Vec3 {
	return Vec3{
		X: (p.X - MapW/2) * TileSize,
		Y: y,
		Z: (p.Y - MapH/2) * TileSize,
	}
}

// WorldToCell returns the tile containing a world position
func WorldToCell(x, z float64) (int, int) {
	return int(math.Floor(x/TileSize + MapW/2)), int(math.Floor(z/TileSize + MapH/2))
}

// IsWall reports whether a tile is solid. Tiles outside the map are solid.
func IsWall(cx, cy int) bool {
	if cx < 0 || cy < 0 || cx >= MapW || cy >= MapH {
		return true
	}
	return arenaMap[cy][cx] == '#'
}

// Blocked reports whether a circle of the given radius at (x, z) overlaps a wall tile
func Blocked(x, z, radius float64) bool {
	minX, minY := WorldToCell(x-radius, z-radius)
	maxX, maxY := WorldToCell(x+radius, z+radius)
	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			if !IsWall(cx, cy) {
				continue
			}
			// closest point of the tile's box to the circle centre
			left := (float64(cx) - MapW/2) * TileSize
			top := (float64(cy) - MapH/2) * TileSize
			nx := Clamp(x, left, left+TileSize)
			nz := Clamp(z, top, top+TileSize)
			if DistanceSq(x, z, nx, nz) < radius*radius {
				return true
			}
		}
	}
	return false
}

// SlideMove advances (x, z) by (dx, dz) one axis at a time, dropping any
// axis that would push the circle into a wall, then clamps to the arena.
// A circle that already overlaps a wall moves freely so it can get out.
func SlideMove(x, z, dx, dz, radius, half float64) (float64, float64) {
	if Blocked(x, z, radius) {
		return Clamp(x+dx, -half, half), Clamp(z+dz, -half, half)
	}
	if nx := Clamp(x+dx, -half, half); !Blocked(nx, z, radius) {
		x = nx
	}
	if nz := Clamp(z+dz, -half, half); !Blocked(x, nz, radius) {
		z = nz
	}
	return x, z
}

// RespawnPoint is where players (re)appear on a level
func RespawnPoint(level int) Vec3 {
	return MapToWorld(LevelAt(level).Spawn, 1)
}

// PortalPoint is the level exit
func PortalPoint(level int) Vec3 {
	return MapToWorld(LevelAt(level).Portal, 1.5)
}
