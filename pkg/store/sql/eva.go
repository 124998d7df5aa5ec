package sql

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/scarnyc/spacewalks/pkg/contract"
	"github.com/scarnyc/spacewalks/pkg/dataset"
	"github.com/scarnyc/spacewalks/pkg/query"
	"github.com/scarnyc/spacewalks/pkg/query/parser"
	"github.com/scarnyc/spacewalks/pkg/store"
	"github.com/scarnyc/spacewalks/pkg/store/sql/model"
	"github.com/scarnyc/spacewalks/pkg/utils"
)

const insertBatchSize = 200

type PageToken struct {
	Offset int32 `json:"offset"`
}

func getOffset(pageToken string) (int, *contract.Error) {
	if pageToken == "" {
		return 0, nil
	}

	var token PageToken

	raw, err := base64.StdEncoding.DecodeString(pageToken)
	if err == nil {
		err = json.Unmarshal(raw, &token)
	}

	if err != nil {
		return 0, contract.NewErrorWith(
			contract.ErrorCodeInvalidParameterValue,
			fmt.Sprintf("invalid page_token: %q", pageToken),
			err,
		)
	}

	if token.Offset < 0 {
		return 0, contract.NewError(
			contract.ErrorCodeInvalidParameterValue,
			fmt.Sprintf("invalid page_token: %q", pageToken),
		)
	}

	return int(token.Offset), nil
}

func mkNextPageToken(offset int) (*string, *contract.Error) {
	raw, err := json.Marshal(PageToken{Offset: int32(offset)}) //nolint:gosec
	if err != nil {
		return nil, contract.NewErrorWith(
			contract.ErrorCodeInternal,
			"error encoding 'next_page_token' value",
			err,
		)
	}

	return utils.PtrTo(base64.StdEncoding.EncodeToString(raw)), nil
}

func (s *Store) applyFilters(transaction *gorm.DB, filter string) *contract.Error {
	conditions, err := query.ParseFilter(filter)
	if err != nil {
		return contract.NewErrorWith(
			contract.ErrorCodeInvalidParameterValue,
			"error parsing search filter",
			err,
		)
	}

	logrus.Debugf("Filter conditions: %#v", conditions)

	emulateILike := s.Dialect() != dialectPostgres

	for _, condition := range conditions {
		column := condition.Field.Column()
		comparison := condition.Operator.String()
		value := condition.Value

		if condition.Operator == parser.ILike && emulateILike {
			column = fmt.Sprintf("LOWER(%s)", column)
			comparison = parser.Like.String()

			if str, ok := value.(string); ok {
				value = strings.ToLower(str)
			}
		}

		transaction.Where(fmt.Sprintf("%s %s ?", column, comparison), value)
	}

	return nil
}

func applyOrderBy(transaction *gorm.DB, orderBy []string) *contract.Error {
	orders, err := query.ParseOrderBy(orderBy)
	if err != nil {
		return contract.NewErrorWith(
			contract.ErrorCodeInvalidParameterValue,
			"error parsing order_by",
			err,
		)
	}

	if len(orders) == 0 {
		orders = append(orders, query.OrderBy{Field: parser.Date})
	}

	for _, order := range orders {
		transaction.Order(clause.OrderByColumn{
			Column: clause.Column{Name: order.Field.Column()},
			Desc:   order.Descending,
		})
	}

	transaction.Order("ordinal")

	return nil
}

func (s *Store) ReplaceEVAs(ctx context.Context, records []dataset.Record) error {
	rows := make([]model.EVA, 0, len(records))
	for _, record := range records {
		rows = append(rows, model.NewEVAFromRecord(record))
	}

	if err := s.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		if err := transaction.Where("1 = 1").Delete(&model.EVA{}).Error; err != nil {
			return fmt.Errorf("failed to clear evas: %w", err)
		}

		if len(rows) == 0 {
			return nil
		}

		if err := transaction.CreateInBatches(&rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert evas: %w", err)
		}

		return nil
	}); err != nil {
		return fmt.Errorf("failed to replace evas: %w", err)
	}

	return nil
}

func (s *Store) SearchEVAs(
	ctx context.Context,
	filter string,
	orderBy []string,
	maxResults int,
	pageToken string,
) (*store.PagedList[*contract.EVA], *contract.Error) {
	transaction := s.db.WithContext(ctx).Model(&model.EVA{})

	offset, contractError := getOffset(pageToken)
	if contractError != nil {
		return nil, contractError
	}

	// One extra row tells whether another page exists.
	transaction.Offset(offset).Limit(maxResults + 1)

	if contractError := s.applyFilters(transaction, filter); contractError != nil {
		return nil, contractError
	}

	if contractError := applyOrderBy(transaction, orderBy); contractError != nil {
		return nil, contractError
	}

	var rows []model.EVA
	if err := transaction.Find(&rows).Error; err != nil {
		return nil, contract.NewErrorWith(
			contract.ErrorCodeInternal,
			"failed to query search evas",
			err,
		)
	}

	var nextPageToken *string

	if len(rows) > maxResults {
		rows = rows[:maxResults]

		nextPageToken, contractError = mkNextPageToken(offset + maxResults)
		if contractError != nil {
			return nil, contractError
		}
	}

	evas := make([]*contract.EVA, 0, len(rows))
	for _, row := range rows {
		evas = append(evas, row.ToContract())
	}

	return &store.PagedList[*contract.EVA]{
		Items:         evas,
		NextPageToken: nextPageToken,
	}, nil
}

func (s *Store) GetEVA(ctx context.Context, id string) (*contract.EVA, *contract.Error) {
	var row model.EVA
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, contract.NewError(
				contract.ErrorCodeResourceDoesNotExist,
				fmt.Sprintf("No EVA with id=%s exists", id),
			)
		}

		return nil, contract.NewErrorWith(contract.ErrorCodeInternal, "failed to get eva", err)
	}

	return row.ToContract(), nil
}

type overall struct {
	Count    int64
	Earliest *string
	Latest   *string
}

func (s *Store) Summary(ctx context.Context) (*contract.Summary, *contract.Error) {
	database := s.db.WithContext(ctx)

	var totals overall
	if err := database.Model(&model.EVA{}).
		Select("COUNT(*) AS count, MIN(date) AS earliest, MAX(date) AS latest").
		Scan(&totals).Error; err != nil {
		return nil, contract.NewErrorWith(contract.ErrorCodeInternal, "failed to summarize evas", err)
	}

	var countries []model.CountryTotals
	if err := database.Model(&model.EVA{}).
		Select(
			"country, COUNT(*) AS count, " +
				"SUM(duration_minutes) AS total_minutes, MAX(duration_minutes) AS max_minutes",
		).
		Group("country").
		Order("MIN(ordinal)").
		Scan(&countries).Error; err != nil {
		return nil, contract.NewErrorWith(contract.ErrorCodeInternal, "failed to summarize evas by country", err)
	}

	summary := &contract.Summary{
		Count:     totals.Count,
		Earliest:  utils.ValueOr(totals.Earliest, ""),
		Latest:    utils.ValueOr(totals.Latest, ""),
		Countries: make([]contract.CountrySummary, 0, len(countries)),
	}

	for _, c := range countries {
		summary.Countries = append(summary.Countries, c.ToContract())
	}

	return summary, nil
}
