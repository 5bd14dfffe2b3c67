// tmxtool is a CLI utility for inspecting and re-encoding Tiled maps.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/tilemap/internal/config"
	"github.com/Faultbox/tilemap/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]
	logger.Debug("command", zap.String("name", command), zap.Strings("args", args))

	t := &tool{cfg: cfg, log: logger.Named("tmxtool")}
	switch command {
	case "info":
		err = t.cmdInfo(args)
	case "cells":
		err = t.cmdCells(args)
	case "encode":
		err = t.cmdEncode(args)
	case "world":
		err = t.cmdWorld(args)
	case "tile":
		err = t.cmdTile(args)
	case "triangulate", "tri":
		err = t.cmdTriangulate(args)
	case "anim":
		err = t.cmdAnim(args)
	case "watch":
		err = t.cmdWatch(args)
	case "config":
		err = t.cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tmxtool - Tiled TMX/TSX map utility

Usage:
  tmxtool [flags] <command> [options]

Flags:
  -config <file>        Config file (default ./tmxtool.yaml)
  -debug                Enable debug logging
  -log-file <file>      Also write JSON logs to a rotating file
  -encoding <name>      Layer encoding for encode: xml, csv, base64
  -compression <name>   Layer compression for encode: none, zlib, gzip, zstd
  -assets <roots>       Comma-separated directories or zip packs searched for references

Commands:
  info <map.tmx|set.tsx>              Show map or tileset summary
  cells <map.tmx> <layer>             Print the cell grid of a tile layer
  encode <map.tmx> [layer]            Re-encode tile layer data
  world <map.tmx> <x> <y>             Convert a tile to world and pixel space
  tile <map.tmx> <px> <py>            Find the tile under a pixel position
  triangulate <map.tmx> [layer]       Build meshes for objects and tile collisions
  anim <map.tmx> [-ms N] [-step N]    Step tile animations
  watch <map.tmx>...                  Reload maps when they or their references change
  config [file]                       Print the effective config or write it to file

Examples:
  tmxtool info level.tmx
  tmxtool -compression zstd encode level.tmx Ground
  tmxtool world level.tmx 8 8
  tmxtool watch maps/*.tmx`)
}
