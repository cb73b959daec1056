package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/aulaproject/aula/core"
	"github.com/aulaproject/aula/core/user"
)

const userTable = `"user"`

var userColumns = []string{
	"id", "first_name", "last_name", "username", "email", "is_active", "roles",
	"password_hash", "created_at", "updated_at",
}

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{repository{exec: exec}}
}

func (repo userRepository) scan(row sq.RowScanner) (user.User, error) {
	var usr user.User
	err := row.Scan(
		&usr.ID, &usr.FirstName, &usr.LastName, &usr.Username, &usr.Email,
		&usr.IsActive, pq.Array(&usr.Roles), &usr.PasswordHash,
		&usr.CreatedAt, &usr.UpdatedAt,
	)
	return usr, err
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error {
	q, args, err := psql.
		Select("COUNT(*)").
		From(userTable).
		Where(sq.Eq{"email": email}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var count int
	if err = repo.getExec(exec).QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	q, args, err := psql.
		Insert(userTable).
		Columns(userColumns...).
		Values(
			usr.ID, usr.FirstName, usr.LastName, usr.Username, usr.Email,
			usr.IsActive, pq.Array(usr.Roles), usr.PasswordHash,
			usr.CreatedAt.UTC(), usr.UpdatedAt.UTC(),
		).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building user insert")
	}

	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) getBy(ctx context.Context, pred sq.Eq, exec []core.DBExecutor) (user.User, error) {
	q, args, err := psql.
		Select(userColumns...).
		From(userTable).
		Where(pred).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building user query")
	}

	usr, err := repo.scan(repo.getExec(exec).QueryRowContext(ctx, q, args...))
	if err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	return repo.getBy(ctx, sq.Eq{"id": id}, exec)
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (user.User, error) {
	return repo.getBy(ctx, sq.Eq{"email": email}, exec)
}

func (repo userRepository) QueryAllUsers(ctx context.Context, exec ...core.DBExecutor) ([]user.User, error) {
	q, args, err := psql.
		Select(userColumns...).
		From(userTable).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building users query")
	}

	rows, err := repo.getExec(exec).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	defer func() { _ = rows.Close() }()

	users := make([]user.User, 0)
	for rows.Next() {
		usr, err := repo.scan(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning user")
		}
		users = append(users, usr)
	}
	return users, errors.Wrap(rows.Err(), "querying users")
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	q, args, err := psql.
		Update(userTable).
		Set("first_name", usr.FirstName).
		Set("last_name", usr.LastName).
		Set("username", usr.Username).
		Set("email", usr.Email).
		Set("is_active", usr.IsActive).
		Set("roles", pq.Array(usr.Roles)).
		Set("password_hash", usr.PasswordHash).
		Set("updated_at", usr.UpdatedAt.UTC()).
		Where(sq.Eq{"id": usr.ID}).
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building user update")
	}

	if _, err = repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return usr, nil
}
