// Package main hosts the NutriScan CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into capture
// pipeline runs: one-shot scans, the continuous barcode watch session,
// history rendering with local image reattachment, image store maintenance,
// and configuration scaffolding. It centralizes configuration resolution and
// structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
