package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/architect/commerce-analytics/internal/analytics/services"
	"github.com/architect/commerce-analytics/internal/common/errors"
	"github.com/architect/commerce-analytics/internal/common/middleware"
	"github.com/architect/commerce-analytics/internal/common/validation"
	"github.com/architect/commerce-analytics/internal/dataset/models"
	datasetservices "github.com/architect/commerce-analytics/internal/dataset/services"
	"github.com/gin-gonic/gin"
)

// Basket mining defaults, overridden from config at startup
var (
	defaultMinSupport    = 0.01
	defaultMinConfidence = 0.5
	defaultMaxProducts   = 500
)

// Configure sets the basket mining defaults
func Configure(minSupport, minConfidence float64, maxProducts int) {
	defaultMinSupport = minSupport
	defaultMinConfidence = minConfidence
	defaultMaxProducts = maxProducts
}

// resolveDataset loads the dataset named in the path and applies the
// optional ?start and ?end date window (YYYY-MM-DD, inclusive).
func resolveDataset(c *gin.Context) (*models.Dataset, error) {
	ds, err := datasetservices.GetDataset(c.Param("id"))
	if err != nil {
		return nil, err
	}

	start, err := parseDateParam(c, "start")
	if err != nil {
		return nil, err
	}
	end, err := parseDateParam(c, "end")
	if err != nil {
		return nil, err
	}
	if start.IsZero() && end.IsZero() {
		return ds, nil
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, errors.BadRequest("end date precedes start date")
	}

	filtered := datasetservices.FilterByDate(ds, start, end)
	if filtered.Len() == 0 {
		return nil, errors.InsufficientData("no transactions in the requested date range")
	}
	return filtered, nil
}

func parseDateParam(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, errors.BadRequest(name + " must be formatted YYYY-MM-DD")
	}
	return t, nil
}

// respond runs one analysis and writes its result or error
func respond(c *gin.Context, run func(*models.Dataset) (any, error)) {
	ds, err := resolveDataset(c)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	result, err := run(ds)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ========== CUSTOMER ANALYTICS ==========

// GetRFM scores every customer
// GET /api/v1/datasets/:id/analytics/rfm
func GetRFM(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.CalculateRFM(ds)
	})
}

// GetSegments summarizes the RFM business segments
// GET /api/v1/datasets/:id/analytics/segments
func GetSegments(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.GetCustomerSegments(ds)
	})
}

// GetCLV estimates customer lifetime value
// GET /api/v1/datasets/:id/analytics/clv
func GetCLV(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.CalculateCLV(ds)
	})
}

// GetCohorts runs the cohort retention analysis
// GET /api/v1/datasets/:id/analytics/cohorts
func GetCohorts(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.CohortAnalysis(ds)
	})
}

// GetChurnRisk scores churn risk per customer, highest risk first
// GET /api/v1/datasets/:id/analytics/churn
func GetChurnRisk(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.IdentifyChurnRisk(ds)
	})
}

// GetJourneys maps customer lifecycle journeys
// GET /api/v1/datasets/:id/analytics/journeys
func GetJourneys(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.MapCustomerJourneys(ds)
	})
}

// GetInsights generates predictive customer insights
// GET /api/v1/datasets/:id/analytics/insights
func GetInsights(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.GetPredictiveInsights(ds)
	})
}

// ========== MARKET BASKET ==========

func basketParams(c *gin.Context) (minSupport, minConfidence float64, err error) {
	minSupport = defaultMinSupport
	minConfidence = defaultMinConfidence
	if raw := c.Query("min_support"); raw != "" {
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil || validation.ValidateRatio(v) != nil {
			return 0, 0, errors.BadRequest("min_support must be in (0, 1]")
		}
		minSupport = v
	}
	if raw := c.Query("min_confidence"); raw != "" {
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil || validation.ValidateRatio(v) != nil {
			return 0, 0, errors.BadRequest("min_confidence must be in (0, 1]")
		}
		minConfidence = v
	}
	return minSupport, minConfidence, nil
}

// GetBasketAnalysis mines product association rules
// GET /api/v1/datasets/:id/analytics/basket?min_support=0.01&min_confidence=0.5
func GetBasketAnalysis(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		minSupport, minConfidence, err := basketParams(c)
		if err != nil {
			return nil, err
		}
		return services.MarketBasketAnalysis(ds, minSupport, minConfidence, defaultMaxProducts)
	})
}

// GetRecommendations suggests products for one customer
// GET /api/v1/datasets/:id/analytics/recommendations/:customer
func GetRecommendations(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		minSupport, minConfidence, err := basketParams(c)
		if err != nil {
			return nil, err
		}
		topN := 5
		if raw := c.Query("top"); raw != "" {
			v, perr := strconv.Atoi(raw)
			if perr != nil || validation.ValidateIntRange(v, 1, 50) != nil {
				return nil, errors.BadRequest("top must be between 1 and 50")
			}
			topN = v
		}
		return services.RecommendProducts(ds, c.Param("customer"), minSupport, minConfidence, topN)
	})
}

// ========== SALES ==========

// GetSalesMetrics returns the headline sales numbers
// GET /api/v1/datasets/:id/sales/metrics
func GetSalesMetrics(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.GetSalesMetrics(ds)
	})
}

// GetMonthlyTrends returns month-by-month sales rollups
// GET /api/v1/datasets/:id/sales/trends
func GetMonthlyTrends(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.GetMonthlyTrends(ds)
	})
}

// GetProductPerformance ranks products by revenue
// GET /api/v1/datasets/:id/sales/products
func GetProductPerformance(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.GetProductPerformance(ds)
	})
}

// GetSeasonalAnalysis breaks revenue down by calendar position
// GET /api/v1/datasets/:id/sales/seasonal
func GetSeasonalAnalysis(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.GetSeasonalAnalysis(ds)
	})
}

// GetAcquisitionTrends tracks new customer acquisition per month
// GET /api/v1/datasets/:id/sales/acquisition
func GetAcquisitionTrends(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.GetAcquisitionTrends(ds)
	})
}

// GetTopCustomers ranks customers by revenue, frequency and recency
// GET /api/v1/datasets/:id/sales/top-customers?n=20
func GetTopCustomers(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		n := 20
		if raw := c.Query("n"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || validation.ValidateIntRange(v, 1, 500) != nil {
				return nil, errors.BadRequest("n must be between 1 and 500")
			}
			n = v
		}
		return services.GetTopCustomers(ds, n)
	})
}

// GetPricingImpact relates unit prices to sales volume
// GET /api/v1/datasets/:id/sales/pricing
func GetPricingImpact(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.AnalyzePricingImpact(ds)
	})
}

// GetRevenueForecast projects monthly revenue forward
// GET /api/v1/datasets/:id/sales/forecast?periods=3
func GetRevenueForecast(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		periods := 3
		if raw := c.Query("periods"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || validation.ValidateIntRange(v, 1, 24) != nil {
				return nil, errors.BadRequest("periods must be between 1 and 24")
			}
			periods = v
		}
		return services.ForecastRevenue(ds, periods)
	})
}

// ========== GEOGRAPHIC ==========

// GetGeoCoverage reports the locations the customer base spans
// GET /api/v1/datasets/:id/geo/coverage
func GetGeoCoverage(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.GetGeographicCoverage(ds)
	})
}

// GetRegionalPerformance ranks locations by revenue
// GET /api/v1/datasets/:id/geo/performance
func GetRegionalPerformance(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.GetRegionalPerformance(ds)
	})
}

// GetGeoSegments buckets each country's customers into spending and
// frequency terciles
// GET /api/v1/datasets/:id/geo/segments
func GetGeoSegments(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.GetGeographicCustomerSegments(ds)
	})
}

// GetGeoTrends compares growth and preferences across countries
// GET /api/v1/datasets/:id/geo/trends
func GetGeoTrends(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.AnalyzeGeographicTrends(ds)
	})
}

// GetMarketPenetration surfaces expansion opportunities
// GET /api/v1/datasets/:id/geo/penetration
func GetMarketPenetration(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.GetMarketPenetration(ds)
	})
}

// GetGeoInsights generates geographic business insights
// GET /api/v1/datasets/:id/geo/insights
func GetGeoInsights(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.GetGeographicInsights(ds)
	})
}

// GetGeoRecommendations lists action items per location
// GET /api/v1/datasets/:id/geo/recommendations
func GetGeoRecommendations(c *gin.Context) {
	respond(c, func(ds *models.Dataset) (any, error) {
		return services.GetLocationRecommendations(ds)
	})
}
