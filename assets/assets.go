// Package assets embeds the files the binaries need at runtime.
package assets

import "embed"

var (
	//go:embed templates/email/*
	EmailTemplates embed.FS

	//go:embed migrations/*.sql
	Migrations embed.FS
)

const (
	EmailTemplatesDir = "templates/email"
	MigrationsDir     = "migrations"
)
