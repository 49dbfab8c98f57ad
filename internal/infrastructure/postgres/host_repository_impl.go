package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/oksasatya/maisrole-api/internal/domain"
	"github.com/oksasatya/maisrole-api/internal/domain/entity"
	"github.com/oksasatya/maisrole-api/internal/domain/repository"
)

const selectHost = `
	SELECT h.id, h.name, h.password_hash, h.created_at, h.updated_at,
	       c.email, c.phone, c.mobile, c.instagram, c.facebook,
	       COALESCE(array_agg(d.weekday ORDER BY d.weekday) FILTER (WHERE d.weekday IS NOT NULL), '{}') AS agenda
	FROM hosts h
	JOIN host_contacts c ON c.host_id = h.id
	LEFT JOIN host_agenda_days d ON d.host_id = h.id
`

const groupHost = ` GROUP BY h.id, c.host_id`

type HostRepository struct {
	store *Store
}

func NewHostRepository(store *Store) *HostRepository {
	return &HostRepository{store: store}
}

func scanHost(row pgx.Row) (*entity.Host, error) {
	var (
		h    entity.Host
		days []int16
	)
	err := row.Scan(&h.ID, &h.Name, &h.PasswordHash, &h.CreatedAt, &h.UpdatedAt,
		&h.Contact.Email, &h.Contact.Phone, &h.Contact.Mobile, &h.Contact.Instagram, &h.Contact.Facebook,
		&days)
	if err != nil {
		return nil, err
	}
	wd := make([]entity.Weekday, len(days))
	for i, d := range days {
		wd[i] = entity.Weekday(d)
	}
	h.Agenda = entity.NewAgenda(wd...)
	return &h, nil
}

func hostNotFound(key any) error {
	return oops.Code("HOST_NOT_FOUND").With("key", key).Public("Host not found").Wrap(domain.ErrNotFound)
}

func (r *HostRepository) findOne(ctx context.Context, where string, arg any) (*entity.Host, error) {
	h, err := scanHost(r.store.conn(ctx).QueryRow(ctx, selectHost+where+groupHost, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, hostNotFound(arg)
	}
	if err != nil {
		return nil, translateError(err, "find host")
	}
	return h, nil
}

func (r *HostRepository) FindByID(ctx context.Context, id int64) (*entity.Host, error) {
	return r.findOne(ctx, ` WHERE h.id = $1`, id)
}

func (r *HostRepository) FindByEmail(ctx context.Context, email string) (*entity.Host, error) {
	return r.findOne(ctx, ` WHERE c.email = $1`, email)
}

func (r *HostRepository) FindAll(ctx context.Context) ([]entity.Host, error) {
	rows, err := r.store.conn(ctx).Query(ctx, selectHost+groupHost+` ORDER BY h.id`)
	if err != nil {
		return nil, translateError(err, "list hosts")
	}
	defer rows.Close()

	hosts := make([]entity.Host, 0)
	for rows.Next() {
		h, err := scanHost(rows)
		if err != nil {
			return nil, translateError(err, "scan host")
		}
		hosts = append(hosts, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "list hosts")
	}
	return hosts, nil
}

func (r *HostRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.store.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM hosts WHERE id = $1)`, id).Scan(&ok)
	return ok, translateError(err, "host exists")
}

func (r *HostRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := r.store.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM host_contacts WHERE email = $1)`, email).Scan(&ok)
	return ok, translateError(err, "host email exists")
}

func (r *HostRepository) Save(ctx context.Context, h *entity.Host) error {
	return r.store.WithinTx(ctx, func(ctx context.Context) error {
		q := r.store.conn(ctx)
		c := h.Contact
		if h.ID == 0 {
			err := q.QueryRow(ctx, `
				INSERT INTO hosts (name, password_hash)
				VALUES ($1, $2)
				RETURNING id, created_at, updated_at
			`, h.Name, h.PasswordHash).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
			if err != nil {
				return translateError(err, "insert host")
			}
			if _, err := q.Exec(ctx, `
				INSERT INTO host_contacts (host_id, email, phone, mobile, instagram, facebook)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, h.ID, c.Email, c.Phone, c.Mobile, c.Instagram, c.Facebook); err != nil {
				return translateError(err, "insert contact")
			}
			return r.writeAgenda(ctx, h.ID, h.Agenda)
		}

		err := q.QueryRow(ctx, `
			UPDATE hosts SET name = $1, password_hash = $2, updated_at = now()
			WHERE id = $3
			RETURNING updated_at
		`, h.Name, h.PasswordHash, h.ID).Scan(&h.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return hostNotFound(h.ID)
		}
		if err != nil {
			return translateError(err, "update host")
		}
		if _, err := q.Exec(ctx, `
			UPDATE host_contacts
			SET email = $1, phone = $2, mobile = $3, instagram = $4, facebook = $5
			WHERE host_id = $6
		`, c.Email, c.Phone, c.Mobile, c.Instagram, c.Facebook, h.ID); err != nil {
			return translateError(err, "update contact")
		}
		if _, err := q.Exec(ctx, `DELETE FROM host_agenda_days WHERE host_id = $1`, h.ID); err != nil {
			return translateError(err, "clear agenda")
		}
		return r.writeAgenda(ctx, h.ID, h.Agenda)
	})
}

func (r *HostRepository) writeAgenda(ctx context.Context, hostID int64, a entity.Agenda) error {
	days := a.Days()
	if len(days) == 0 {
		return nil
	}
	nums := make([]int16, len(days))
	for i, d := range days {
		nums[i] = int16(d)
	}
	_, err := r.store.conn(ctx).Exec(ctx, `
		INSERT INTO host_agenda_days (host_id, weekday)
		SELECT $1, unnest($2::smallint[])
	`, hostID, nums)
	return translateError(err, "insert agenda")
}

func (r *HostRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	tag, err := r.store.conn(ctx).Exec(ctx,
		`UPDATE hosts SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
	if err != nil {
		return translateError(err, "update host password")
	}
	if tag.RowsAffected() == 0 {
		return hostNotFound(id)
	}
	return nil
}

// DeleteByID removes the host; contact and agenda rows cascade.
func (r *HostRepository) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.store.conn(ctx).Exec(ctx, `DELETE FROM hosts WHERE id = $1`, id)
	if err != nil {
		return translateError(err, "delete host")
	}
	if tag.RowsAffected() == 0 {
		return hostNotFound(id)
	}
	return nil
}

var _ repository.HostRepository = (*HostRepository)(nil)
