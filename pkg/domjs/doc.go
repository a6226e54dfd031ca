//go:build js && wasm

// Package domjs is the concrete, browser-facing Builder/Patcher pair
// (C4, C5) implementing the ports declared in package runtime. It is
// built directly against syscall/js and only compiles under GOOS=js
// GOARCH=wasm; package runtime's own tests exercise the Program logic
// against fakes instead.
package domjs
