package domain

import "sort"

// fieldSpec descreve um campo conhecido do Insights API: rótulo de exibição
// e classificação numérica. Campos não listados são tratados como elegíveis
// para agregação numérica.
type fieldSpec struct {
	Label   string
	Numeric bool
}

// fieldCatalog é o vocabulário conhecido de campos de insight. O conjunto
// evolui junto com o Graph API; campos rejeitados pelo upstream são removidos
// em tempo de execução pelo reparo automático de campos, nunca daqui.
var fieldCatalog = map[string]fieldSpec{
	// Identidade e período
	"account_id":    {Label: "Account ID", Numeric: false},
	"account_name":  {Label: "Account Name", Numeric: false},
	"campaign_id":   {Label: "Campaign ID", Numeric: false},
	"campaign_name": {Label: "Campaign Name", Numeric: false},
	"adset_id":      {Label: "Ad Set ID", Numeric: false},
	"adset_name":    {Label: "Ad Set Name", Numeric: false},
	"ad_id":         {Label: "Ad ID", Numeric: false},
	"ad_name":       {Label: "Ad Name", Numeric: false},
	"date_start":    {Label: "Date Start", Numeric: false},
	"date_stop":     {Label: "Date Stop", Numeric: false},
	"objective":     {Label: "Objective", Numeric: false},
	"buying_type":   {Label: "Buying Type", Numeric: false},

	// Entrega
	"impressions":  {Label: "Impressions", Numeric: true},
	"reach":        {Label: "Reach", Numeric: true},
	"frequency":    {Label: "Frequency", Numeric: true},
	"spend":        {Label: "Spend", Numeric: true},
	"social_spend": {Label: "Social Spend", Numeric: true},

	// Cliques
	"clicks":                        {Label: "Clicks (All)", Numeric: true},
	"unique_clicks":                 {Label: "Unique Clicks", Numeric: true},
	"inline_link_clicks":            {Label: "Link Clicks", Numeric: true},
	"unique_inline_link_clicks":     {Label: "Unique Link Clicks", Numeric: true},
	"inline_post_engagement":        {Label: "Post Engagement", Numeric: true},
	"outbound_clicks_total":         {Label: "Outbound Clicks", Numeric: true},
	"outbound_clicks_ctr_total":     {Label: "Outbound CTR", Numeric: true},
	"unique_outbound_clicks_total":  {Label: "Unique Outbound Clicks", Numeric: true},

	// Razões
	"ctr":                        {Label: "CTR (All)", Numeric: true},
	"unique_ctr":                 {Label: "Unique CTR", Numeric: true},
	"inline_link_click_ctr":      {Label: "Link Click CTR", Numeric: true},
	"unique_link_clicks_ctr":     {Label: "Unique Link Click CTR", Numeric: true},
	"cpc":                        {Label: "CPC (All)", Numeric: true},
	"cost_per_unique_click":      {Label: "Cost per Unique Click", Numeric: true},
	"cost_per_inline_link_click": {Label: "Cost per Link Click", Numeric: true},
	"cpm":                        {Label: "CPM", Numeric: true},
	"cpp":                        {Label: "CPP", Numeric: true},

	// Resultados derivados
	"results":         {Label: "Results", Numeric: true},
	"cost_per_result": {Label: "Cost per Result", Numeric: true},
	"result_rate":     {Label: "Result Rate", Numeric: true},

	// Ações (achatadas a partir do array "actions")
	"actions_purchase":                 {Label: "Purchases", Numeric: true},
	"actions_lead":                     {Label: "Leads", Numeric: true},
	"actions_link_click":               {Label: "Link Click Actions", Numeric: true},
	"actions_landing_page_view":        {Label: "Landing Page Views", Numeric: true},
	"actions_add_to_cart":              {Label: "Adds to Cart", Numeric: true},
	"actions_initiate_checkout":        {Label: "Checkouts Initiated", Numeric: true},
	"actions_add_payment_info":         {Label: "Payment Info Adds", Numeric: true},
	"actions_complete_registration":    {Label: "Registrations Completed", Numeric: true},
	"actions_view_content":             {Label: "Content Views", Numeric: true},
	"actions_search":                   {Label: "Searches", Numeric: true},
	"actions_add_to_wishlist":          {Label: "Adds to Wishlist", Numeric: true},
	"actions_subscribe":                {Label: "Subscriptions", Numeric: true},
	"actions_start_trial":              {Label: "Trials Started", Numeric: true},
	"actions_submit_application":       {Label: "Applications Submitted", Numeric: true},
	"actions_schedule":                 {Label: "Appointments Scheduled", Numeric: true},
	"actions_contact":                  {Label: "Contacts", Numeric: true},
	"actions_donate":                   {Label: "Donations", Numeric: true},
	"actions_post_engagement":          {Label: "Post Engagements", Numeric: true},
	"actions_page_engagement":          {Label: "Page Engagements", Numeric: true},
	"actions_post_reaction":            {Label: "Post Reactions", Numeric: true},
	"actions_comment":                  {Label: "Comments", Numeric: true},
	"actions_post":                     {Label: "Shares", Numeric: true},
	"actions_like":                     {Label: "Page Likes", Numeric: true},
	"actions_video_view":               {Label: "Video Views", Numeric: true},
	"actions_photo_view":               {Label: "Photo Views", Numeric: true},
	"actions_app_install":              {Label: "App Installs", Numeric: true},
	"actions_mobile_app_install":       {Label: "Mobile App Installs", Numeric: true},
	"actions_omni_purchase":            {Label: "Purchases (Omni)", Numeric: true},
	"actions_omni_add_to_cart":         {Label: "Adds to Cart (Omni)", Numeric: true},
	"actions_omni_initiated_checkout":  {Label: "Checkouts Initiated (Omni)", Numeric: true},
	"actions_omni_view_content":        {Label: "Content Views (Omni)", Numeric: true},
	"actions_omni_complete_registration": {Label: "Registrations (Omni)", Numeric: true},
	"actions_onsite_conversion_messaging_conversation_started_7d": {Label: "Messaging Conversations Started", Numeric: true},
	"actions_onsite_conversion_post_save":                         {Label: "Post Saves", Numeric: true},
	"actions_onsite_conversion_lead_grouped":                      {Label: "On-Facebook Leads", Numeric: true},
	"actions_offsite_conversion_fb_pixel_purchase":                {Label: "Pixel Purchases", Numeric: true},
	"actions_offsite_conversion_fb_pixel_lead":                    {Label: "Pixel Leads", Numeric: true},
	"actions_offsite_conversion_fb_pixel_add_to_cart":             {Label: "Pixel Adds to Cart", Numeric: true},
	"actions_offsite_conversion_fb_pixel_initiate_checkout":       {Label: "Pixel Checkouts Initiated", Numeric: true},
	"actions_offsite_conversion_fb_pixel_view_content":            {Label: "Pixel Content Views", Numeric: true},
	"actions_offsite_conversion_fb_pixel_complete_registration":   {Label: "Pixel Registrations", Numeric: true},

	// Valores de conversão (achatados de "action_values")
	"action_values_purchase":                          {Label: "Purchase Value", Numeric: true},
	"action_values_omni_purchase":                     {Label: "Purchase Value (Omni)", Numeric: true},
	"action_values_add_to_cart":                       {Label: "Add to Cart Value", Numeric: true},
	"action_values_initiate_checkout":                 {Label: "Checkout Value", Numeric: true},
	"action_values_lead":                              {Label: "Lead Value", Numeric: true},
	"action_values_offsite_conversion_fb_pixel_purchase": {Label: "Pixel Purchase Value", Numeric: true},

	// ROAS (achatado de "purchase_roas" / "website_purchase_roas")
	"purchase_roas_purchase":                          {Label: "Purchase ROAS", Numeric: true},
	"purchase_roas_omni_purchase":                     {Label: "Purchase ROAS (Omni)", Numeric: true},
	"website_purchase_roas_offsite_conversion_fb_pixel_purchase": {Label: "Website Purchase ROAS", Numeric: true},

	// Custo por ação (achatado de "cost_per_action_type")
	"cost_per_action_type_purchase":              {Label: "Cost per Purchase", Numeric: true},
	"cost_per_action_type_lead":                  {Label: "Cost per Lead", Numeric: true},
	"cost_per_action_type_link_click":            {Label: "Cost per Link Click Action", Numeric: true},
	"cost_per_action_type_landing_page_view":     {Label: "Cost per Landing Page View", Numeric: true},
	"cost_per_action_type_add_to_cart":           {Label: "Cost per Add to Cart", Numeric: true},
	"cost_per_action_type_initiate_checkout":     {Label: "Cost per Checkout Initiated", Numeric: true},
	"cost_per_action_type_complete_registration": {Label: "Cost per Registration", Numeric: true},
	"cost_per_action_type_video_view":            {Label: "Cost per Video View", Numeric: true},
	"cost_per_action_type_post_engagement":       {Label: "Cost per Post Engagement", Numeric: true},
	"cost_per_thruplay_video_view":               {Label: "Cost per ThruPlay", Numeric: true},
	"cost_per_outbound_click_outbound_click":     {Label: "Cost per Outbound Click", Numeric: true},
	"cost_per_unique_outbound_click_outbound_click": {Label: "Cost per Unique Outbound Click", Numeric: true},

	// Vídeo
	"video_play_actions_video_view":                  {Label: "Video Plays", Numeric: true},
	"video_p25_watched_actions_video_view":           {Label: "Video Watches at 25%", Numeric: true},
	"video_p50_watched_actions_video_view":           {Label: "Video Watches at 50%", Numeric: true},
	"video_p75_watched_actions_video_view":           {Label: "Video Watches at 75%", Numeric: true},
	"video_p95_watched_actions_video_view":           {Label: "Video Watches at 95%", Numeric: true},
	"video_p100_watched_actions_video_view":          {Label: "Video Watches at 100%", Numeric: true},
	"video_avg_time_watched_actions_video_view":      {Label: "Avg. Video Watch Time", Numeric: true},
	"video_30_sec_watched_actions_video_view":        {Label: "Video 30s Watches", Numeric: true},
	"video_thruplay_watched_actions_video_view":      {Label: "ThruPlays", Numeric: true},
	"video_continuous_2_sec_watched_actions_video_view": {Label: "Continuous 2s Video Plays", Numeric: true},

	// Engajamento adicional
	"estimated_ad_recallers":            {Label: "Estimated Ad Recallers", Numeric: true},
	"estimated_ad_recall_rate":          {Label: "Estimated Ad Recall Rate", Numeric: true},
	"cost_per_estimated_ad_recallers":   {Label: "Cost per Ad Recaller", Numeric: true},
	"full_view_impressions":             {Label: "Full View Impressions", Numeric: true},
	"full_view_reach":                   {Label: "Full View Reach", Numeric: true},
	"canvas_avg_view_time":              {Label: "Instant Experience Avg. View Time", Numeric: true},
	"canvas_avg_view_percent":           {Label: "Instant Experience Avg. View %", Numeric: true},
	"instant_experience_clicks_to_open": {Label: "Instant Experience Opens", Numeric: true},
	"instant_experience_clicks_to_start": {Label: "Instant Experience Starts", Numeric: true},
	"instant_experience_outbound_clicks": {Label: "Instant Experience Outbound Clicks", Numeric: true},

	// Conversões agregadas
	"conversions_total":            {Label: "Conversions", Numeric: true},
	"conversion_values_total":      {Label: "Conversion Value", Numeric: true},
	"cost_per_conversion_total":    {Label: "Cost per Conversion", Numeric: true},
	"converted_product_quantity":   {Label: "Products Purchased", Numeric: true},
	"converted_product_value":      {Label: "Product Purchase Value", Numeric: true},

	// Dimensões de breakdown
	"publisher_platform": {Label: "Platform", Numeric: false},
	"platform_position":  {Label: "Placement", Numeric: false},
	"device_platform":    {Label: "Device", Numeric: false},
	"gender":             {Label: "Gender", Numeric: false},
	"age":                {Label: "Age", Numeric: false},
	"region":             {Label: "Region", Numeric: false},
	"country":            {Label: "Country", Numeric: false},

	// Qualidade
	"quality_ranking":           {Label: "Quality Ranking", Numeric: false},
	"engagement_rate_ranking":   {Label: "Engagement Rate Ranking", Numeric: false},
	"conversion_rate_ranking":   {Label: "Conversion Rate Ranking", Numeric: false},
	"attribution_setting":       {Label: "Attribution Setting", Numeric: false},
	"optimization_goal":         {Label: "Optimization Goal", Numeric: false},
}

// FieldLabel retorna o rótulo de exibição de um campo; campos desconhecidos
// exibem o próprio identificador.
func FieldLabel(field string) string {
	if spec, ok := fieldCatalog[field]; ok {
		return spec.Label
	}
	return field
}

// IsNumericField responde se um campo participa de agregação numérica.
// Campos fora do catálogo são elegíveis por padrão, já que o vocabulário do
// upstream muda sem aviso.
func IsNumericField(field string) bool {
	if spec, ok := fieldCatalog[field]; ok {
		return spec.Numeric
	}
	return true
}

// KnownFields retorna a união de todos os identificadores catalogados,
// ordenada. Usada para semear a seleção padrão de colunas.
func KnownFields() []string {
	fields := make([]string, 0, len(fieldCatalog))
	for field := range fieldCatalog {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
