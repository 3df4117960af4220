package pipeline

import (
	"context"
	"database/sql"
	"fmt"

	"nbalake/internal/domain"
)

// generateTestSQL builds the SQL query for a model test.
// The test passes if 0 rows are returned.
func generateTestSQL(test domain.ModelTest, targetSchema, modelName string) (string, error) {
	fqn := quoteIdent(targetSchema) + "." + quoteIdent(modelName)
	col := quoteIdent(test.Column)

	switch test.TestType {
	case domain.TestTypeNotNull:
		return fmt.Sprintf("SELECT * FROM %s WHERE %s IS NULL LIMIT 1", fqn, col), nil
	case domain.TestTypeUnique:
		return fmt.Sprintf("SELECT %s, COUNT(*) AS cnt FROM %s GROUP BY %s HAVING cnt > 1 LIMIT 1", col, fqn, col), nil
	case domain.TestTypePositive:
		return fmt.Sprintf("SELECT * FROM %s WHERE %s IS NULL OR %s <= 0 LIMIT 1", fqn, col, col), nil
	case domain.TestTypeRelationships:
		toFqn := quoteIdent(targetSchema) + "." + quoteIdent(test.ToModel)
		toCol := quoteIdent(test.ToColumn)
		return fmt.Sprintf(
			"SELECT a.%s FROM %s a LEFT JOIN %s b ON a.%s = b.%s WHERE b.%s IS NULL LIMIT 1",
			col, fqn, toFqn, col, toCol, toCol), nil
	case domain.TestTypeCustomSQL:
		return test.SQL, nil
	default:
		return "", fmt.Errorf("unknown test type: %s", test.TestType)
	}
}

// runModelTests executes all tests for a model after materialization.
// Returns the first failing test name, or "" when everything passed.
func (e *Executor) runModelTests(ctx context.Context, conn *sql.Conn,
	model *domain.Model, targetSchema, runID string) (string, error) {

	for _, test := range model.Tests {
		testSQL, err := generateTestSQL(test, targetSchema, model.Name)
		if err != nil {
			e.recordTestResult(ctx, runID, model.Name, test, domain.TestResultError, nil, err.Error())
			return test.Name, fmt.Errorf("test %s: %w", test.Name, err)
		}

		hasRows, err := e.queryHasRows(ctx, conn, testSQL)
		if err != nil {
			e.recordTestResult(ctx, runID, model.Name, test, domain.TestResultError, nil, err.Error())
			return test.Name, fmt.Errorf("test %s: %w", test.Name, err)
		}

		if hasRows {
			var violations int64 = 1
			e.recordTestResult(ctx, runID, model.Name, test, domain.TestResultFail, &violations, "")
			return test.Name, nil
		}

		var violations int64
		e.recordTestResult(ctx, runID, model.Name, test, domain.TestResultPass, &violations, "")
	}
	return "", nil
}

// queryHasRows executes a test query and reports whether it returned any rows.
func (e *Executor) queryHasRows(ctx context.Context, conn *sql.Conn, query string) (bool, error) {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return false, err
	}
	defer func() { _ = rows.Close() }()

	hasRows := rows.Next()
	if err := rows.Err(); err != nil {
		return false, err
	}
	return hasRows, nil
}

func (e *Executor) recordTestResult(ctx context.Context, runID, modelName string,
	test domain.ModelTest, status string, rowsReturned *int64, errMsg string) {

	if e.runs == nil {
		return
	}
	result := &domain.TestResult{
		RunID:        runID,
		ModelName:    modelName,
		TestName:     test.Name,
		Status:       status,
		RowsReturned: rowsReturned,
	}
	if errMsg != "" {
		result.Error = &errMsg
	}
	if err := e.runs.RecordTestResult(ctx, result); err != nil {
		e.logger.Warn("failed to record test result", "test", test.Name, "error", err)
	}
}
