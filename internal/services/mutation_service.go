package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dbdesk/mysql-admin/internal/database"
	"github.com/dbdesk/mysql-admin/internal/models"
	"github.com/dbdesk/mysql-admin/internal/repositories"
	"github.com/dbdesk/mysql-admin/internal/utils"
)

// linkToGeneratedID selects the generated id of the primary record as the
// value of a related record's link field.
const linkToGeneratedID = "id"

// MutationService is the constraint-aware mutation engine. Updates and
// deletes that would break foreign keys of other tables are refused unless
// the caller forces them, in which case foreign key checks are suspended on
// the borrowed connection for the single statement.
type MutationService struct {
	pool       ConnProvider
	schema     *SchemaService
	schemaRepo *repositories.SchemaRepository
	tableRepo  *repositories.TableRepository
	logger     *logrus.Logger
}

func NewMutationService(
	pool ConnProvider,
	schema *SchemaService,
	schemaRepo *repositories.SchemaRepository,
	tableRepo *repositories.TableRepository,
	logger *logrus.Logger,
) *MutationService {
	return &MutationService{
		pool:       pool,
		schema:     schema,
		schemaRepo: schemaRepo,
		tableRepo:  tableRepo,
		logger:     logger,
	}
}

// assignments keeps the entries of values that name a column of schema, in
// column order. Unknown keys are dropped.
func assignments(schema *models.TableSchema, values map[string]interface{}) []repositories.Assignment {
	out := make([]repositories.Assignment, 0, len(values))
	for _, col := range schema.Columns {
		value, ok := values[col.Name]
		if !ok {
			continue
		}
		out = append(out, repositories.Assignment{Column: col.Name, Value: utils.NormalizeValue(value)})
	}
	return out
}

// Insert adds one row to table. Related records are inserted in the same
// transaction; if any of them fails nothing is written.
func (s *MutationService) Insert(ctx context.Context, table string, values map[string]interface{}, related []models.RelatedRecord) (*models.InsertResult, error) {
	if err := validateIdentifier("table", table); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: Data is required", ErrInvalidInput)
	}
	for _, rel := range related {
		if rel.Table == "" {
			continue
		}
		if err := validateIdentifier("table", rel.Table); err != nil {
			return nil, err
		}
	}

	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if len(related) == 0 {
		return s.insert(ctx, conn, table, values, nil)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, classifyError(err)
	}

	result, err := s.insert(ctx, tx, table, values, related)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Errorf("Error rolling back insert into %s: %v", table, rbErr)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyError(err)
	}
	return result, nil
}

func (s *MutationService) insert(ctx context.Context, q repositories.Executor, table string, values map[string]interface{}, related []models.RelatedRecord) (*models.InsertResult, error) {
	schema, err := s.schema.describe(ctx, q, table)
	if err != nil {
		return nil, err
	}

	primary := assignments(schema, values)
	if len(primary) == 0 {
		return nil, fmt.Errorf("%w: No valid columns provided for insert", ErrInvalidInput)
	}

	res, err := s.tableRepo.Insert(ctx, q, table, primary)
	if err != nil {
		return nil, classifyError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, classifyError(err)
	}
	s.logger.Infof("Inserted record into %s (id %d)", table, id)

	result := &models.InsertResult{ID: id}
	for _, rel := range related {
		if rel.Table == "" || len(rel.Data) == 0 {
			continue
		}

		relSchema, err := s.schema.describe(ctx, q, rel.Table)
		if err != nil {
			return nil, err
		}

		data := make(map[string]interface{}, len(rel.Data)+1)
		for k, v := range rel.Data {
			data[k] = v
		}
		if rel.LinkField != "" && rel.LinkToField != "" && relSchema.HasColumn(rel.LinkField) {
			if rel.LinkToField == linkToGeneratedID {
				data[rel.LinkField] = id
			} else {
				data[rel.LinkField] = linkValue(primary, rel.LinkToField)
			}
		}

		relValues := assignments(relSchema, data)
		if len(relValues) == 0 {
			continue
		}

		relRes, err := s.tableRepo.Insert(ctx, q, rel.Table, relValues)
		if err != nil {
			return nil, classifyError(err)
		}
		relID, err := relRes.LastInsertId()
		if err != nil {
			return nil, classifyError(err)
		}
		s.logger.Infof("Inserted related record into %s (id %d)", rel.Table, relID)
		result.RelatedRecords = append(result.RelatedRecords, models.RelatedResult{
			Table:   rel.Table,
			ID:      relID,
			Success: true,
		})
	}

	return result, nil
}

func linkValue(values []repositories.Assignment, column string) interface{} {
	for _, v := range values {
		if v.Column == column {
			return v.Value
		}
	}
	return nil
}

// Update changes the row of table whose primary key equals id. Changing a
// primary key that other tables reference requires force.
func (s *MutationService) Update(ctx context.Context, table, id string, changes map[string]interface{}, force bool) error {
	if err := validateIdentifier("table", table); err != nil {
		return err
	}
	if len(changes) == 0 {
		return fmt.Errorf("%w: No data provided for update", ErrInvalidInput)
	}

	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return err
	}
	defer conn.Close()

	schema, err := s.schema.describe(ctx, conn, table)
	if err != nil {
		return err
	}
	pk := schema.PrimaryKeyColumn()
	if pk == "" {
		return fmt.Errorf("%w: Table has no primary key", ErrSchema)
	}

	sets := assignments(schema, changes)
	if len(sets) == 0 {
		return fmt.Errorf("%w: No valid columns provided for update", ErrInvalidInput)
	}

	if _, changesKey := changes[pk]; changesKey {
		constraints, err := s.schemaRepo.GetReferencingConstraints(ctx, conn, table, pk)
		if err != nil {
			return classifyError(err)
		}
		if len(constraints) > 0 && !force {
			return &ConstraintConflictError{
				Summary:     "Cannot update primary key due to foreign key constraints",
				Detail:      "This primary key is referenced by other tables. Updating it may cause data inconsistency.",
				Solution:    "You can either update the referencing records first, or use force=true parameter to bypass checks (not recommended)",
				Constraints: constraints,
			}
		}
	}

	s.logger.Infof("Updating %s where %s = %s (force: %t)", table, pk, id, force)
	err = s.run(ctx, conn, force, func() error {
		affected, err := s.tableRepo.Update(ctx, conn, table, pk, id, sets)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: Record not found", ErrNotFound)
		}
		return nil
	})
	return conflictAs(classifyError(err), "Cannot update record due to foreign key constraints")
}

// Delete removes the row of table whose primary key equals id. Rows that
// other tables may reference are only deleted when forced.
func (s *MutationService) Delete(ctx context.Context, table, id string, force bool) error {
	if err := validateIdentifier("table", table); err != nil {
		return err
	}

	conn, err := borrow(ctx, s.pool)
	if err != nil {
		return err
	}
	defer conn.Close()

	schema, err := s.schema.describe(ctx, conn, table)
	if err != nil {
		return err
	}
	pk := schema.PrimaryKeyColumn()
	if pk == "" {
		return fmt.Errorf("%w: Table has no primary key", ErrSchema)
	}

	constraints, err := s.schemaRepo.GetReferencingConstraints(ctx, conn, table, pk)
	if err != nil {
		return classifyError(err)
	}
	if len(constraints) > 0 && !force {
		return &ConstraintConflictError{
			Summary:     "Cannot delete record due to foreign key constraints",
			Detail:      "This record is referenced by other tables. Deleting it may cause data inconsistency.",
			Solution:    "You can either delete the referencing records first, or use force=true parameter to bypass checks (not recommended)",
			Constraints: constraints,
		}
	}

	s.logger.Infof("Deleting from %s where %s = %s (force: %t)", table, pk, id, force)
	err = s.run(ctx, conn, force, func() error {
		affected, err := s.tableRepo.Delete(ctx, conn, table, pk, id)
		if err != nil {
			return err
		}
		if affected == 0 {
			return fmt.Errorf("%w: Record not found", ErrNotFound)
		}
		return nil
	})
	return conflictAs(classifyError(err), "Cannot delete record due to foreign key constraints")
}

func (s *MutationService) run(ctx context.Context, conn *sql.Conn, force bool, fn func() error) error {
	if !force {
		return fn()
	}
	return database.WithForeignKeyChecksDisabled(ctx, conn, fn)
}

// conflictAs retitles an engine-level foreign key conflict for the operation
// that raised it.
func conflictAs(err error, summary string) error {
	var conflict *ConstraintConflictError
	if errors.As(err, &conflict) && len(conflict.Constraints) == 0 {
		conflict.Summary = summary
	}
	return err
}
