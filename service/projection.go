package service

import (
	"github.com/nishajha1234/mgnrega-backend/models"
	"github.com/nishajha1234/mgnrega-backend/utils"
)

// Project reshapes a newest-first record set into the dashboard response:
// a time series walked oldest-to-newest plus a KPI snapshot taken from the
// single most recent record. Every measured field goes through ToNumber, so
// absent or junk values come out as 0, never null.
func Project(rows []models.DistrictRecord) *models.DistrictData {
	points := make([]models.TimeseriesPoint, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		p := rows[i].Payload
		points = append(points, models.TimeseriesPoint{
			FinYear:                p.String("fin_year"),
			Month:                  p.String("month"),
			Persondays:             utils.ToNumber(p["Persondays_of_Central_Liability_so_far"]),
			TotalHouseholdsWorked:  utils.ToNumber(p["Total_Households_Worked"]),
			TotalIndividualsWorked: utils.ToNumber(p["Total_Individuals_Worked"]),
			Expenditure:            utils.ToNumber(p["Total_Exp"]),
		})
	}

	latest := rows[0].Payload
	name := latest.String("district_name")
	if name == "" {
		name = "Unknown"
	}
	kpis := models.KPISnapshot{
		DistrictName:           name,
		TotalIndividualsWorked: utils.ToNumber(latest["Total_Individuals_Worked"]),
		TotalHouseholdsWorked:  utils.ToNumber(latest["Total_Households_Worked"]),
		TotalExp:               utils.ToNumber(latest["Total_Exp"]),
		WomenPersondays:        utils.ToNumber(latest["Women_Persondays"]),
		AvgDaysWorked:          utils.ToNumber(latest["Average_days_of_employment_provided_per_Household"]),
		// Upstream misspells "generated"; keep their key.
		PaymentWithin15Days: utils.ToNumber(latest["percentage_payments_gererated_within_15_days"]),
	}

	return &models.DistrictData{KPIs: kpis, Timeseries: points}
}
