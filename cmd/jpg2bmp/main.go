/*
DESCRIPTION
  jpg2bmp decodes baseline JPEG files given as arguments and writes each
  as a 24-bit BMP alongside the input.

AUTHORS
  Trek Hopton <trek@ausocean.org>
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package main provides the jpg2bmp command.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/img/codec/bmp"
	"github.com/ausocean/img/codec/jpeg"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v1.0.0"

// Logging configuration.
const (
	logPath      = "jpg2bmp.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = true
)

func main() {
	showVersion := flag.Bool("version", false, "show version")
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}

	// Create logger that we call methods on to log, which writes to both
	// stdout and the lumberjack logger.
	log := logging.New(logVerbosity, io.MultiWriter(os.Stdout, fileLog), logSuppress)
	jpeg.Log = log

	paths := flag.Args()
	if len(paths) == 0 {
		log.Error("no input files given")
		os.Exit(1)
	}

	for _, path := range paths {
		out := outPath(path)
		err := convert(path, out)
		if err != nil {
			log.Error("could not convert file", "path", path, "error", err.Error())
			continue
		}
		log.Info("converted", "input", path, "output", out)
	}
}

// convert decodes the JPEG at in and writes the BMP rendition to out. The
// output file is only created once decoding has succeeded.
func convert(in, out string) error {
	f, err := os.Open(in)
	if err != nil {
		return fmt.Errorf("could not open input file: %w", err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		return fmt.Errorf("could not decode JPEG: %w", err)
	}

	o, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}

	err = bmp.Encode(o, img.Pix, img.Width, img.Height)
	if err != nil {
		o.Close()
		return fmt.Errorf("could not encode BMP: %w", err)
	}
	return o.Close()
}

// outPath replaces the final extension of path with .bmp, or appends .bmp
// if path has none.
func outPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".bmp"
}
