package analytics

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/Rupavathi1225/teja-starin-hub/pkg/models"
)

// TopN - сколько лидеров показывать в сводках по результатам и поискам
const TopN = 10

// recentLimit - сколько свежих записей попадает в сводку
const recentLimit = 10

// ResultStat - лидерборд веб-результатов (группировка по заголовок+URL)
type ResultStat struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	Clicks         int    `json:"clicks"`
	SponsoredClick int    `json:"sponsored_clicks"`
	OrganicClick   int    `json:"organic_clicks"`
}

// SearchStat - лидерборд связанных поисков по кликам
type SearchStat struct {
	RelatedSearchID string `json:"related_search_id"`
	SearchText      string `json:"search_text"`
	Clicks          int    `json:"clicks"`
}

// SessionRollup - развёртка активности одной сессии
type SessionRollup struct {
	SessionID   string    `json:"session_id"`
	Device      string    `json:"device_type"`
	Events      int       `json:"events"`
	Clicks      int       `json:"clicks"`
	BlogsSeen   int       `json:"blogs_seen"`
	SearchesHit int       `json:"searches_hit"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
}

// EmailStats - сводка по журналу email-подписок
type EmailStats struct {
	Total  int                      `json:"total"`
	Unique int                      `json:"unique"`
	Recent []models.EmailSubmission `json:"recent"`
}

// Summary - полная аналитическая сводка, считается в памяти
// по всему журналу событий при каждом запросе (без пагинации)
type Summary struct {
	TotalSessions         int                    `json:"total_sessions"`
	TotalPageViews        int                    `json:"total_page_views"`
	UniquePageViews       int                    `json:"unique_page_views"` // по различным IP
	TotalClicks           int                    `json:"total_clicks"`
	UniqueClicks          int                    `json:"unique_clicks"`
	BlogViews             int                    `json:"blog_views"`
	UniqueBlogViews       int                    `json:"unique_blog_views"`
	RelatedSearchClicks   int                    `json:"related_search_clicks"`
	UniqueSearchClicks    int                    `json:"unique_search_clicks"`
	VisitNowClicks        int                    `json:"visit_now_clicks"`
	UniqueVisitNowClicks  int                    `json:"unique_visit_now_clicks"`
	WebResultClicks       int                    `json:"web_result_clicks"`
	UniqueWebResultClicks int                    `json:"unique_web_result_clicks"`
	Devices               map[string]int         `json:"devices"`
	TopResults            []ResultStat           `json:"top_results"`
	TopSearches           []SearchStat           `json:"top_searches"`
	Sessions              []SessionRollup        `json:"sessions"`
	Emails                EmailStats             `json:"emails"`
	RecentEvents          []models.TrackingEvent `json:"recent_events"`
}

// strOrEmpty разворачивает nullable-ссылку на сущность
func strOrEmpty(s *string) string {

	if s == nil {
		return ""
	}
	return *s
}

// Build сводит журнал событий и журнал email в одну структуру.
// Стоимость растёт линейно с историей - так устроен и исходный проект.
func Build(events []models.TrackingEvent, submissions []models.EmailSubmission) Summary {

	sessions := make(map[string]struct{})
	ips := make(map[string]struct{})
	clickSessions := make(map[string]struct{})
	uniqueBlogViews := make(map[string]struct{})
	uniqueSearchClicks := make(map[string]struct{})
	uniqueVisitNow := make(map[string]struct{})
	uniqueResultClicks := make(map[string]struct{})
	devices := make(map[string]int)

	resultStats := make(map[string]*ResultStat)
	searchStats := make(map[string]*SearchStat)
	rollups := make(map[string]*SessionRollup)

	summary := Summary{
		Devices: devices,
	}

	for _, e := range events {
		sessions[e.SessionID] = struct{}{}
		if e.IPAddress != "" {
			ips[e.IPAddress] = struct{}{}
		}
		if e.DeviceType != "" {
			devices[e.DeviceType]++
		}

		isClick := strings.Contains(e.EventType, "click")
		if isClick {
			summary.TotalClicks++
			clickSessions[e.SessionID] = struct{}{}
		}

		switch e.EventType {
		case models.EventBlogView:
			summary.BlogViews++
			uniqueBlogViews[e.SessionID+"-"+strOrEmpty(e.BlogID)] = struct{}{}
		case models.EventRelatedSearchClick:
			summary.RelatedSearchClicks++
			uniqueSearchClicks[e.SessionID+"-"+strOrEmpty(e.RelatedSearchID)] = struct{}{}
		case models.EventVisitNowClick:
			summary.VisitNowClicks++
			uniqueVisitNow[e.SessionID+"-"+strOrEmpty(e.RelatedSearchID)] = struct{}{}
		case models.EventWebResultClick:
			summary.WebResultClicks++
			uniqueResultClicks[e.SessionID+"-"+strOrEmpty(e.RelatedSearchID)] = struct{}{}

			// группируем клики по заголовок+URL из типизированной нагрузки
			var payload models.WebResultClickPayload
			if err := json.Unmarshal([]byte(e.EventData), &payload); err == nil && payload.URL != "" {
				key := payload.Title + "|" + payload.URL
				stat, ok := resultStats[key]
				if !ok {
					stat = &ResultStat{Title: payload.Title, URL: payload.URL}
					resultStats[key] = stat
				}
				stat.Clicks++
				if payload.IsSponsored {
					stat.SponsoredClick++
				} else {
					stat.OrganicClick++
				}
			}
		}

		// лидерборд поисков: любой клик, привязанный к поиску
		if isClick && e.RelatedSearchID != nil {
			stat, ok := searchStats[*e.RelatedSearchID]
			if !ok {
				stat = &SearchStat{RelatedSearchID: *e.RelatedSearchID}
				searchStats[*e.RelatedSearchID] = stat
			}
			stat.Clicks++
			if stat.SearchText == "" {
				var payload models.SearchPayload
				if err := json.Unmarshal([]byte(e.EventData), &payload); err == nil {
					stat.SearchText = payload.SearchText
				}
			}
		}

		// развёртка по сессиям
		roll, ok := rollups[e.SessionID]
		if !ok {
			roll = &SessionRollup{
				SessionID: e.SessionID,
				Device:    e.DeviceType,
				FirstSeen: e.CreatedAt,
				LastSeen:  e.CreatedAt,
			}
			rollups[e.SessionID] = roll
		}
		roll.Events++
		if isClick {
			roll.Clicks++
		}
		if e.CreatedAt.Before(roll.FirstSeen) {
			roll.FirstSeen = e.CreatedAt
		}
		if e.CreatedAt.After(roll.LastSeen) {
			roll.LastSeen = e.CreatedAt
		}
	}

	// различные статьи и поиски внутри каждой сессии
	sessionBlogs := make(map[string]map[string]struct{})
	sessionSearches := make(map[string]map[string]struct{})
	for _, e := range events {
		if e.BlogID != nil {
			if sessionBlogs[e.SessionID] == nil {
				sessionBlogs[e.SessionID] = make(map[string]struct{})
			}
			sessionBlogs[e.SessionID][*e.BlogID] = struct{}{}
		}
		if e.RelatedSearchID != nil {
			if sessionSearches[e.SessionID] == nil {
				sessionSearches[e.SessionID] = make(map[string]struct{})
			}
			sessionSearches[e.SessionID][*e.RelatedSearchID] = struct{}{}
		}
	}
	for id, roll := range rollups {
		roll.BlogsSeen = len(sessionBlogs[id])
		roll.SearchesHit = len(sessionSearches[id])
	}

	summary.TotalSessions = len(sessions)
	summary.TotalPageViews = len(events)
	summary.UniquePageViews = len(ips)
	summary.UniqueClicks = len(clickSessions)
	summary.UniqueBlogViews = len(uniqueBlogViews)
	summary.UniqueSearchClicks = len(uniqueSearchClicks)
	summary.UniqueVisitNowClicks = len(uniqueVisitNow)
	summary.UniqueWebResultClicks = len(uniqueResultClicks)

	summary.TopResults = topResults(resultStats)
	summary.TopSearches = topSearches(searchStats)
	summary.Sessions = sortedRollups(rollups)
	summary.Emails = emailStats(submissions)
	summary.RecentEvents = recentEvents(events)

	return summary
}

// topResults сортирует лидерборд результатов: по кликам, при равенстве - по заголовку
func topResults(stats map[string]*ResultStat) []ResultStat {

	out := make([]ResultStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Clicks != out[j].Clicks {
			return out[i].Clicks > out[j].Clicks
		}
		return out[i].Title < out[j].Title
	})

	if len(out) > TopN {
		out = out[:TopN]
	}

	return out
}

// topSearches сортирует лидерборд поисков
func topSearches(stats map[string]*SearchStat) []SearchStat {

	out := make([]SearchStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Clicks != out[j].Clicks {
			return out[i].Clicks > out[j].Clicks
		}
		return out[i].RelatedSearchID < out[j].RelatedSearchID
	})

	if len(out) > TopN {
		out = out[:TopN]
	}

	return out
}

// sortedRollups выводит сессии от самых свежих к старым
func sortedRollups(rollups map[string]*SessionRollup) []SessionRollup {

	out := make([]SessionRollup, 0, len(rollups))
	for _, r := range rollups {
		out = append(out, *r)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastSeen.Equal(out[j].LastSeen) {
			return out[i].LastSeen.After(out[j].LastSeen)
		}
		return out[i].SessionID < out[j].SessionID
	})

	return out
}

// emailStats сводит журнал email: всего, уникальных адресов, свежие записи
func emailStats(submissions []models.EmailSubmission) EmailStats {

	unique := make(map[string]struct{})
	for _, s := range submissions {
		unique[s.Email] = struct{}{}
	}

	sorted := make([]models.EmailSubmission, len(submissions))
	copy(sorted, submissions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	recent := sorted
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	return EmailStats{
		Total:  len(submissions),
		Unique: len(unique),
		Recent: recent,
	}
}

// recentEvents возвращает свежие события для блока Recent Activity
func recentEvents(events []models.TrackingEvent) []models.TrackingEvent {

	sorted := make([]models.TrackingEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	if len(sorted) > recentLimit {
		sorted = sorted[:recentLimit]
	}

	return sorted
}
