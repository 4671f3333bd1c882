// Package models contains GORM persistence models that map to database tables.
// They are kept apart from the domain entities so the domain layer stays free
// of ORM tags; each model converts to and from its entity with ToDomain and
// a *FromDomain constructor.
//
// Charges and payments share EntryModel and differ only in table name.
// Documents store their tagged owner as two nullable foreign keys, of which
// exactly one is set; a CHECK constraint in the SQL migrations enforces it.
package models
