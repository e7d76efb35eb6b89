package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"animal-tracker/internal/domain/animals"

	"github.com/jackc/pgx/v5/pgconn"
)

// callTimeout acota cada llamada remota; expirar cuenta como remoto caído.
const callTimeout = 15 * time.Second

// Gateway implementa animals.RemoteGateway sobre el row-store hosteado
// (tablas animals + inseminations, particionadas por owner_id).
// Sin retries acá: la política de reintento vive en la cola del Synchronizer.
type Gateway struct {
	db *sql.DB
}

func NewGateway(db *sql.DB) *Gateway {
	return &Gateway{db: db}
}

func (g *Gateway) FetchAll(ctx context.Context, ownerID string) ([]animals.Record, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	rows, err := g.db.QueryContext(ctx, `
		SELECT
			uuid, owner_id,
			isletme_kupesi, devlet_kupesi, tasma_no, irk, sinif, note,
			dogum_tarihi, last_modified
		FROM animals
		WHERE owner_id = $1
		ORDER BY isletme_kupesi ASC
	`, ownerID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := make([]animals.Record, 0)
	for rows.Next() {
		var rec animals.Record
		var farmTag, stateTag, collarNo, breed, class, note, lastModified sql.NullString
		var birthDate sql.NullTime
		if err := rows.Scan(
			&rec.UUID,
			&rec.OwnerID,
			&farmTag,
			&stateTag,
			&collarNo,
			&breed,
			&class,
			&note,
			&birthDate,
			&lastModified,
		); err != nil {
			return nil, classify(err)
		}

		rec.FarmTag = farmTag.String
		rec.StateTag = stateTag.String
		rec.CollarNo = collarNo.String
		rec.Breed = breed.String
		rec.Class = class.String
		rec.Note = note.String
		rec.LastModified = lastModified.String
		if birthDate.Valid {
			t := birthDate.Time
			rec.BirthDate = &t
		}

		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	// las tohumlamalar van anidadas bajo cada animal, más recientes primero
	for i := range out {
		ins, err := g.fetchInseminations(ctx, out[i].UUID)
		if err != nil {
			return nil, err
		}
		out[i].Inseminations = ins
	}

	return out, nil
}

func (g *Gateway) fetchInseminations(ctx context.Context, animalUUID string) ([]animals.Insemination, error) {
	rows, err := g.db.QueryContext(ctx, `
		SELECT uuid, animal_uuid, tohumlama_tarihi, sperma
		FROM inseminations
		WHERE animal_uuid = $1
		ORDER BY tohumlama_tarihi DESC
	`, animalUUID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []animals.Insemination
	for rows.Next() {
		var ins animals.Insemination
		var date sql.NullTime
		var bull sql.NullString
		if err := rows.Scan(&ins.UUID, &ins.AnimalUUID, &date, &bull); err != nil {
			return nil, classify(err)
		}
		if date.Valid {
			t := date.Time
			ins.Date = &t
		}
		ins.Bull = bull.String
		out = append(out, ins)
	}
	return out, classifyNil(rows.Err())
}

// InsertBatch inserta todos los registros (y sus inseminaciones) en una
// transacción: o entra el lote completo o nada.
func (g *Gateway) InsertBatch(ctx context.Context, recs []animals.Record) error {
	if len(recs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO animals (
				uuid, owner_id,
				isletme_kupesi, devlet_kupesi, tasma_no, irk, sinif, note,
				dogum_tarihi, last_modified
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`,
			rec.UUID,
			rec.OwnerID,
			rec.FarmTag,
			rec.StateTag,
			rec.CollarNo,
			rec.Breed,
			rec.Class,
			rec.Note,
			toNullTime(rec.BirthDate),
			rec.LastModified,
		); err != nil {
			return classify(err)
		}
		if err := insertInseminations(ctx, tx, rec); err != nil {
			return err
		}
	}

	return classifyNil(tx.Commit())
}

// UpdateOne reemplaza un registro remoto por uuid, inseminaciones incluidas.
func (g *Gateway) UpdateOne(ctx context.Context, uuid string, rec animals.Record) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE animals
		SET
			isletme_kupesi = $2,
			devlet_kupesi = $3,
			tasma_no = $4,
			irk = $5,
			sinif = $6,
			note = $7,
			dogum_tarihi = $8,
			last_modified = $9
		WHERE uuid = $1
	`,
		uuid,
		rec.FarmTag,
		rec.StateTag,
		rec.CollarNo,
		rec.Breed,
		rec.Class,
		rec.Note,
		toNullTime(rec.BirthDate),
		rec.LastModified,
	)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: unknown uuid %s", animals.ErrRemoteRejected, uuid)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM inseminations WHERE animal_uuid = $1`, uuid); err != nil {
		return classify(err)
	}
	rec.UUID = uuid
	if err := insertInseminations(ctx, tx, rec); err != nil {
		return err
	}

	return classifyNil(tx.Commit())
}

// Upsert inserta o reemplaza por uuid.
func (g *Gateway) Upsert(ctx context.Context, rec animals.Record) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO animals (
			uuid, owner_id,
			isletme_kupesi, devlet_kupesi, tasma_no, irk, sinif, note,
			dogum_tarihi, last_modified
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (uuid) DO UPDATE SET
			isletme_kupesi = EXCLUDED.isletme_kupesi,
			devlet_kupesi = EXCLUDED.devlet_kupesi,
			tasma_no = EXCLUDED.tasma_no,
			irk = EXCLUDED.irk,
			sinif = EXCLUDED.sinif,
			note = EXCLUDED.note,
			dogum_tarihi = EXCLUDED.dogum_tarihi,
			last_modified = EXCLUDED.last_modified
	`,
		rec.UUID,
		rec.OwnerID,
		rec.FarmTag,
		rec.StateTag,
		rec.CollarNo,
		rec.Breed,
		rec.Class,
		rec.Note,
		toNullTime(rec.BirthDate),
		rec.LastModified,
	); err != nil {
		return classify(err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM inseminations WHERE animal_uuid = $1`, rec.UUID); err != nil {
		return classify(err)
	}
	if err := insertInseminations(ctx, tx, rec); err != nil {
		return err
	}

	return classifyNil(tx.Commit())
}

func insertInseminations(ctx context.Context, tx *sql.Tx, rec animals.Record) error {
	for _, ins := range rec.Inseminations {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inseminations (uuid, animal_uuid, tohumlama_tarihi, sperma)
			VALUES (COALESCE(NULLIF($1, ''), gen_random_uuid()::text), $2, $3, $4)
		`,
			ins.UUID,
			rec.UUID,
			toNullTime(ins.Date),
			ins.Bull,
		); err != nil {
			return classify(err)
		}
	}
	return nil
}

// classify separa "el remoto rechazó la escritura" (constraint/dato inválido,
// reintentarlo tal cual no va a andar) de "el remoto no está" (todo lo demás,
// recuperable en el próximo pase).
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// clase 22 = data exception, 23 = integrity constraint violation
		if strings.HasPrefix(pgErr.Code, "22") || strings.HasPrefix(pgErr.Code, "23") {
			return fmt.Errorf("%w: %s", animals.ErrRemoteRejected, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %v", animals.ErrRemoteUnavailable, err)
}

func classifyNil(err error) error {
	if err == nil {
		return nil
	}
	return classify(err)
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
